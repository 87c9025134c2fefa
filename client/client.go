package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=ws://localhost:8080"`
	Token     string `env:"CHAT_TOKEN,required=true"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
}

// incomingFrame covers both chat messages and control events; the event field
// is empty for a regular message.
type incomingFrame struct {
	ID    uint64 `json:"id"`
	Role  string `json:"role"`
	Body  string `json:"body"`
	Time  string `json:"time"`
	Event string `json:"event"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v", err)
	}
	os.Exit(code)
}

// run handles the WebSocket client lifecycle, configuration loading, and the
// send/receive loops. This pattern ensures clean resource management and
// error propagation.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Establish the WebSocket session. The token is the only credential;
	// the role it carries decides how our messages are labeled.
	endpoint := strings.TrimRight(config.ServerURL, "/") + "/ws/" + config.Token
	socket, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerURL, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = socket.Close()
	}()

	log.Info("Connected, replaying history (Ctrl+C to quit)...")

	// 4. Reception loop in its own goroutine; printing never blocks sending.
	recvErr := make(chan error, 1)
	go func() {
		for {
			var frame incomingFrame
			if err := socket.ReadJSON(&frame); err != nil {
				recvErr <- err
				return
			}
			printFrame(frame)
		}
	}()

	// 5. Send loop: one message per stdin line.
	lines := readLines(os.Stdin)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			return exitOK, nil
		case err := <-recvErr:
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if err := socket.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return exitRuntime, fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

// printFrame renders one incoming frame, color-coded by role.
func printFrame(frame incomingFrame) {
	switch frame.Event {
	case "":
		stamp := frame.Time
		if parsed, err := time.Parse(time.RFC3339Nano, frame.Time); err == nil {
			stamp = parsed.Local().Format(time.TimeOnly)
		}
		roleColor := color.Cyan
		if frame.Role == "X" {
			roleColor = color.Yellow
		}
		fmt.Printf("[%s] %s %s\n", stamp, roleColor.Sprintf("%s:", frame.Role), frame.Body)
	case "cleared":
		color.Red.Println("--- history cleared ---")
	default:
		color.Red.Printf("server event: %s %s\n", frame.Event, frame.Body)
	}
}

// readLines feeds non-empty stdin lines into a channel so the main loop can
// select over input, incoming traffic, and shutdown at once.
func readLines(file *os.File) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				out <- line
			}
		}
	}()
	return out
}
