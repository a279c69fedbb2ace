// Package realtime maintains the push channel from the messaging
// provider. Every console session subscribes to the one shared workspace
// channel and filters events downstream; the provider does not fan out
// per contact.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tnslabs/waconsole/internal/logger"
	"github.com/tnslabs/waconsole/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 64 * 1024
)

// Options configures a Subscriber. Channel and Event default to the
// workspace-wide values when empty.
type Options struct {
	URL          string
	Channel      string
	Event        string
	PingInterval time.Duration
	MaxBackoff   time.Duration
}

// Subscriber owns one websocket connection and its reconnect loop.
// Decoded message events come out of Events; the channel closes when Run
// returns.
type Subscriber struct {
	opts   Options
	events chan models.MessageEvent
}

func NewSubscriber(opts Options) (*Subscriber, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("realtime: URL is required")
	}
	if opts.Channel == "" {
		opts.Channel = "chat-channel"
	}
	if opts.Event == "" {
		opts.Event = "new-message"
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = time.Minute
	}
	return &Subscriber{
		opts:   opts,
		events: make(chan models.MessageEvent, 64),
	}, nil
}

// Events is the stream of decoded message events across reconnects.
func (s *Subscriber) Events() <-chan models.MessageEvent {
	return s.events
}

// Run connects, re-subscribes after every drop with exponential backoff,
// and blocks until ctx is cancelled. The backoff resets once a
// connection survives long enough to deliver traffic.
func (s *Subscriber) Run(ctx context.Context) error {
	defer close(s.events)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = s.opts.MaxBackoff
	policy.MaxElapsedTime = 0

	for {
		err := s.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := policy.NextBackOff()
		logger.Log.Warn("realtime connection dropped",
			zap.Error(err),
			zap.Duration("retry_in", wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// subscribeFrame is the provider's channel-binding handshake, sent once
// per connection.
type subscribeFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// eventFrame wraps every frame the provider pushes after the handshake.
type eventFrame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// flexID tolerates ids and timestamps published as either JSON strings
// or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

// rawEvent mirrors the provider's message payload. Text arrives under
// either message or message_text depending on which backend path
// triggered the publish.
type rawEvent struct {
	ID            flexID `json:"id"`
	ContactID     flexID `json:"contact_id"`
	Message       string `json:"message"`
	MessageText   string `json:"message_text"`
	SenderType    string `json:"sender_type"`
	Timestamp     flexID `json:"timestamp"`
	MediaType     string `json:"media_type"`
	MediaFilePath string `json:"media_file_path"`
	MediaFileName string `json:"media_file_name"`
}

func (s *Subscriber) connectAndRead(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, s.opts.URL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("realtime: dial %s: %w", s.opts.URL, err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(subscribeFrame{Action: "subscribe", Channel: s.opts.Channel}); err != nil {
		return fmt.Errorf("realtime: subscribe %s: %w", s.opts.Channel, err)
	}
	logger.Log.Info("realtime subscribed", zap.String("channel", s.opts.Channel))

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The writer side only carries pings; it closes the connection to
	// unblock the reader when ctx ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(s.opts.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("realtime: read: %w", err)
			}
			return err
		}

		event, ok := decodeEvent(payload, s.opts.Event)
		if !ok {
			continue
		}
		select {
		case s.events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// decodeEvent unwraps a provider frame and keeps only the configured
// message event. Frames with no contact id are dropped; without one the
// event cannot be routed to a conversation.
func decodeEvent(payload []byte, wantEvent string) (models.MessageEvent, bool) {
	var frame eventFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		logger.Log.Debug("realtime frame rejected", zap.Error(err))
		return models.MessageEvent{}, false
	}
	if frame.Event != wantEvent {
		return models.MessageEvent{}, false
	}

	var raw rawEvent
	if err := json.Unmarshal(frame.Data, &raw); err != nil {
		logger.Log.Debug("realtime payload rejected", zap.Error(err))
		return models.MessageEvent{}, false
	}
	if raw.ContactID.String() == "" {
		return models.MessageEvent{}, false
	}

	event := models.MessageEvent{
		ContactID:  raw.ContactID.String(),
		MessageID:  raw.ID.String(),
		Text:       raw.MessageText,
		SenderType: raw.SenderType,
		Timestamp:  raw.Timestamp.String(),
		ReceivedAt: time.Now(),
	}
	if event.Text == "" {
		event.Text = raw.Message
	}
	if event.SenderType == "" {
		event.SenderType = models.SenderCustomer
	}
	if raw.MediaFilePath != "" || raw.MediaType != "" {
		event.Media = &models.Media{
			Type:     raw.MediaType,
			FilePath: raw.MediaFilePath,
			FileName: raw.MediaFileName,
		}
	}
	return event, true
}
