package main

import "time"

type Config struct {
	AdminEmail     string `env:"ADMIN_EMAIL,required=true"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`

	// Empty means "generate at startup": a random secret for JWT_SECRET, a
	// digest of the admin email for ROOM_ID.
	JwtSecret string `env:"JWT_SECRET"`
	RoomID    string `env:"ROOM_ID"`

	FrontendOrigin string `env:"FRONTEND_ORIGIN,default=http://localhost:3000"`
	Host           string `env:"HOST,default=localhost"`
	Port           int    `env:"PORT,default=8080"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=5s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	StoreGCInterval      time.Duration `env:"STORE_GC_INTERVAL,default=5m"`

	AdminTokenDuration time.Duration `env:"ADMIN_TOKEN_DURATION,default=60m"`
	GuestTokenDuration time.Duration `env:"GUEST_TOKEN_DURATION,default=30m"`
}
