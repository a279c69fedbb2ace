package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnslabs/waconsole/internal/models"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		ok       bool
		expected models.MessageEvent
	}{
		{
			name:    "text event",
			payload: `{"event": "new-message", "channel": "chat-channel", "data": {"id": 5, "contact_id": "12", "message_text": "hello", "sender_type": "customer", "timestamp": "2025-03-01 10:00:00"}}`,
			ok:      true,
			expected: models.MessageEvent{
				ContactID:  "12",
				MessageID:  "5",
				Text:       "hello",
				SenderType: models.SenderCustomer,
				Timestamp:  "2025-03-01 10:00:00",
			},
		},
		{
			name:    "message field and numeric timestamp",
			payload: `{"event": "new-message", "data": {"contact_id": 12, "message": "echo", "sender_type": "company", "timestamp": 1714000000}}`,
			ok:      true,
			expected: models.MessageEvent{
				ContactID:  "12",
				Text:       "echo",
				SenderType: models.SenderCompany,
				Timestamp:  "1714000000",
			},
		},
		{
			name:    "media event",
			payload: `{"event": "new-message", "data": {"contact_id": 3, "sender_type": "customer", "media_type": "image", "media_file_path": "/m/9.jpg", "media_file_name": "pic.jpg"}}`,
			ok:      true,
			expected: models.MessageEvent{
				ContactID:  "3",
				SenderType: models.SenderCustomer,
				Media:      &models.Media{Type: models.MediaImage, FilePath: "/m/9.jpg", FileName: "pic.jpg"},
			},
		},
		{
			name:    "sender defaults to customer",
			payload: `{"event": "new-message", "data": {"contact_id": 3, "message_text": "hi"}}`,
			ok:      true,
			expected: models.MessageEvent{
				ContactID:  "3",
				Text:       "hi",
				SenderType: models.SenderCustomer,
			},
		},
		{
			name:    "other events are dropped",
			payload: `{"event": "typing", "data": {"contact_id": 3}}`,
			ok:      false,
		},
		{
			name:    "missing contact id is dropped",
			payload: `{"event": "new-message", "data": {"message_text": "orphan"}}`,
			ok:      false,
		},
		{
			name:    "malformed frame is dropped",
			payload: `not json`,
			ok:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			event, ok := decodeEvent([]byte(tc.payload), "new-message")
			require.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}
			event.ReceivedAt = tc.expected.ReceivedAt
			assert.Equal(t, tc.expected, event)
		})
	}
}

func TestNewSubscriberDefaults(t *testing.T) {
	_, err := NewSubscriber(Options{})
	require.Error(t, err)

	sub, err := NewSubscriber(Options{URL: "wss://realtime.example/ws"})
	require.NoError(t, err)
	assert.Equal(t, "chat-channel", sub.opts.Channel)
	assert.Equal(t, "new-message", sub.opts.Event)
	assert.Positive(t, sub.opts.PingInterval)
}
