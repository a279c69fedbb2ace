package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnslabs/waconsole/internal/api"
	"github.com/tnslabs/waconsole/internal/conversation"
	"github.com/tnslabs/waconsole/internal/models"
	"github.com/tnslabs/waconsole/internal/session"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	store, err := session.Open(t.TempDir())
	require.NoError(t, err)
	return &App{Session: store}
}

func TestSidebarFilterMatchesNamePhoneAndLastMessage(t *testing.T) {
	contacts := []models.Contact{
		{ID: "1", Name: "Asha", PhoneNumber: "+919800000001", LastMessage: "refund approved"},
		{ID: "2", Name: "Vikram", PhoneNumber: "+919811112222", LastMessage: "see you"},
	}
	m := NewChatModel(newTestApp(t), contacts)

	tests := []struct {
		needle   string
		expected []string
	}{
		{"", []string{"1", "2"}},
		{"vikram", []string{"2"}},
		{"+91981111", []string{"2"}},
		{"refund", []string{"1"}},
		{"REFUND", []string{"1"}},
		{"nothing here", nil},
	}

	for _, tc := range tests {
		t.Run(tc.needle, func(t *testing.T) {
			m.applyFilter(tc.needle)
			var got []string
			for _, idx := range m.filtered {
				got = append(got, contacts[idx].ID)
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFailedUploadRemovesThePlaceholder(t *testing.T) {
	m := NewChatModel(newTestApp(t), nil)
	m.activeContact = models.Contact{ID: "7", Name: "Asha"}
	m.thread = conversation.NewThread("7")
	placeholder := m.thread.AppendPendingMedia(
		models.Media{Type: models.MediaImage, FileName: "pic.jpg"}, "", "t1")
	m.sending = 1

	updated, _ := m.Update(uploadResultMsg{
		contactID: "7",
		tempID:    placeholder.ID,
		err:       errors.New("upload rejected"),
	})
	chat := updated.(ChatModel)

	assert.Equal(t, 0, chat.thread.Len())
	assert.Error(t, chat.err)
}

func TestSuccessfulUploadConfirmsThePlaceholder(t *testing.T) {
	m := NewChatModel(newTestApp(t), nil)
	m.activeContact = models.Contact{ID: "7", Name: "Asha"}
	m.thread = conversation.NewThread("7")
	placeholder := m.thread.AppendPendingMedia(
		models.Media{Type: models.MediaImage, FileName: "pic.jpg"}, "", "t1")
	m.sending = 1

	updated, _ := m.Update(uploadResultMsg{
		contactID: "7",
		tempID:    placeholder.ID,
		result: api.UploadResult{
			MessageID: "801",
			Media:     models.Media{Type: models.MediaImage, FilePath: "/m/801.jpg", FileName: "pic.jpg"},
		},
	})
	chat := updated.(ChatModel)

	require.Equal(t, 1, chat.thread.Len())
	msg := chat.thread.Messages()[0]
	assert.Equal(t, "801", msg.ID)
	assert.False(t, msg.Pending)
}

func TestTemplatePickerForwardsRealtimeToTheChat(t *testing.T) {
	app := newTestApp(t)
	chat := NewChatModel(app, []models.Contact{{ID: "7", Name: "Asha"}})
	chat.activeContact = models.Contact{ID: "7", Name: "Asha"}
	chat.thread = conversation.NewThread("7")

	picker := NewTemplatesModel(app, &chat)
	_, _ = picker.Update(realtimeMsg{event: models.MessageEvent{
		ContactID:  "7",
		MessageID:  "300",
		Text:       "still here?",
		SenderType: models.SenderCustomer,
		Timestamp:  "t1",
	}})

	require.Equal(t, 1, chat.thread.Len())
	assert.Equal(t, "still here?", chat.thread.Messages()[0].Text)
	assert.Equal(t, "still here?", chat.contacts[0].LastMessage)
}
