// Package server exposes the relay over HTTP: token issuance, the history
// wipe, and the WebSocket session itself.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"chat-relay/domain"
	"chat-relay/domain/event"
	cerrors "chat-relay/errors"
	"chat-relay/services"
	"chat-relay/sink"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type ChatServer struct {
	log        *slog.Logger
	auth       services.IAuthService
	chat       services.IChatService
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewChatServer(log *slog.Logger, auth services.IAuthService,
	chat services.IChatService, allowedOrigin string, bufferSize int) *ChatServer {
	return &ChatServer{
		log:  log,
		auth: auth,
		chat: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		bufferSize: bufferSize,
	}
}

func (s *ChatServer) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	token, err := s.auth.LoginAdmin(r.URL.Query().Get("email"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *ChatServer) handleInvite(w http.ResponseWriter, r *http.Request) {
	token, err := s.auth.Invite(r.URL.Query().Get("email"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"invite_token": token})
}

// handleClear wipes the full history. Either party may trigger it; the only
// gate is a valid token.
func (s *ChatServer) handleClear(w http.ResponseWriter, r *http.Request) {
	role, err := s.auth.Authenticate(r.URL.Query().Get("token"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.chat.Clear(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	s.log.Info("History cleared", "by", role.Label())
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleSocket runs one chat session. Authentication happens before the
// upgrade: a rejected token never reaches the registry.
func (s *ChatServer) handleSocket(w http.ResponseWriter, r *http.Request) {
	role, err := s.auth.Authenticate(chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	socket, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "role", role.Label(), "error", err)
		return
	}

	s.runSession(r, role, socket)
}

func (s *ChatServer) runSession(r *http.Request, role domain.Role, socket *websocket.Conn) {
	conn := sink.NewConn(s.bufferSize)

	s.chat.Join(role, conn)
	defer func() {
		s.chat.Leave(role, conn)
		conn.Close()
		socket.Close()
	}()

	s.log.Info("Session opened", "role", role.Label())

	// Write pump: the single goroutine allowed to write to the socket.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for {
			select {
			case e := <-conn.Events:
				if err := socket.WriteJSON(toPayload(e)); err != nil {
					s.log.Warn("Write failed, dropping session",
						"role", role.Label(), "error", err)
					conn.Close()
					return
				}
			case <-conn.Done():
				// Wakes the read loop too: a superseded connection must
				// not linger blocked on a read.
				_ = socket.Close()
				return
			}
		}
	}()

	if err := s.chat.Replay(r.Context(), conn); err != nil {
		s.log.Error("Replay failed", "role", role.Label(), "error", err)
		return
	}

	s.readLoop(r, role, socket, conn)

	conn.Close()
	<-writeDone
	s.log.Info("Session closed", "role", role.Label())
}

// readLoop consumes inbound frames until the peer hangs up or the connection
// is superseded. A store failure is reported to the sender only; the session
// stays up.
func (s *ChatServer) readLoop(r *http.Request, role domain.Role, socket *websocket.Conn, conn *sink.Conn) {
	for {
		select {
		case <-conn.Done():
			return
		default:
		}

		_, data, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Read failed", "role", role.Label(), "error", err)
			}
			return
		}

		body := strings.TrimSpace(string(data))
		if body == "" {
			continue
		}

		if _, err := s.chat.Post(r.Context(), role, body); err != nil {
			s.log.Error("Message not committed", "role", role.Label(), "error", err)
			_ = conn.Consume(r.Context(), event.DeliveryFailure{Reason: "message not stored"})
		}
	}
}

func (s *ChatServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("Response encoding failed", "error", err)
	}
}

func (s *ChatServer) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, cerrors.MapToStatus(err), map[string]string{"detail": err.Error()})
}
