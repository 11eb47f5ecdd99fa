package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/state"
)

// SubscriberConfig holds configuration for the push channel connection.
type SubscriberConfig struct {
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

// DefaultSubscriberConfig returns default push channel configuration.
func DefaultSubscriberConfig() SubscriberConfig {
	return SubscriberConfig{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

// Subscriber maintains the WebSocket push channel and feeds decoded state
// events to the session, in the order the server sent them.
type Subscriber struct {
	url     string
	userID  string
	deliver func(state.Event)
	config  SubscriberConfig
}

// NewSubscriber returns a Subscriber that delivers each push message's state
// event through deliver.
func NewSubscriber(url, userID string, deliver func(state.Event), config SubscriberConfig) *Subscriber {
	return &Subscriber{
		url:     url,
		userID:  userID,
		deliver: deliver,
		config:  config,
	}
}

// Run connects and reads push messages until ctx is cancelled or the
// connection fails. A message with an unknown code aborts the subscription:
// the server contract requires exhaustive handling, so skipping would hide a
// protocol mismatch.
func (s *Subscriber) Run(ctx context.Context) error {
	connID := uuid.New().String()

	header := http.Header{}
	header.Set("X-User-ID", s.userID)
	header.Set("X-Connection-ID", connID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("failed to connect push channel: %w", err)
	}

	log.Info().
		Str("connection_id", connID).
		Str("user_id", s.userID).
		Msg("push channel connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go s.writePump(conn, connID, done)

	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		return nil
	})

	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Str("connection_id", connID).Msg("push channel shutting down")
				return nil
			}
			return fmt.Errorf("push channel read failed: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("malformed push message: %w", err)
		}

		event, err := MapEvent(msg)
		if err != nil {
			return err
		}

		log.Debug().
			Str("connection_id", connID).
			Str("code", msg.Code).
			Msg("push message received")
		s.deliver(event)
	}
}

// writePump keeps the connection alive with periodic pings. The client never
// sends application messages; all commands go over HTTP.
func (s *Subscriber) writePump(conn *websocket.Conn, connID string, done <-chan struct{}) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", connID).
					Msg("failed to send ping")
				return
			}
		}
	}
}
