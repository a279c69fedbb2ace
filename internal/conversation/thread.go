// Package conversation holds the message state for one open contact.
// The backend list, optimistic placeholders and realtime echoes all feed
// the same thread, which keeps insertion order instead of re-sorting on
// every change.
package conversation

import (
	"github.com/google/uuid"

	"github.com/tnslabs/waconsole/internal/models"
)

// Thread is the in-memory conversation with a single contact. It is not
// safe for concurrent use; the UI event loop owns it.
type Thread struct {
	contactID string
	messages  []models.Message
}

func NewThread(contactID string) *Thread {
	return &Thread{contactID: contactID}
}

func (t *Thread) ContactID() string { return t.contactID }

// Load replaces the thread with a fresh backend page. Placeholders that
// are still pending survive the reload so an in-flight send does not
// vanish from the view, unless the page already carries a company
// message with the same body, which means the send landed.
func (t *Thread) Load(messages []models.Message) {
	var pending []models.Message
	for _, msg := range t.messages {
		if msg.Pending || msg.Failed {
			pending = append(pending, msg)
		}
	}
	t.messages = append([]models.Message{}, messages...)
	for _, msg := range pending {
		if msg.Pending && t.hasCompanyBody(msg.Text) {
			continue
		}
		if !t.contains(msg) {
			t.messages = append(t.messages, msg)
		}
	}
}

func (t *Thread) hasCompanyBody(text string) bool {
	if text == "" {
		return false
	}
	for _, msg := range t.messages {
		if msg.FromCompany() && !msg.Pending && !msg.Failed && msg.Text == text {
			return true
		}
	}
	return false
}

// Messages returns the thread in display order.
func (t *Thread) Messages() []models.Message {
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Thread) Len() int { return len(t.messages) }

// AppendPendingText adds an optimistic placeholder for a text send and
// returns it. The placeholder keeps its slot until a confirmation or
// echo replaces it.
func (t *Thread) AppendPendingText(text, timestamp string) models.Message {
	msg := models.Message{
		ID:         models.TempIDPrefix + uuid.NewString(),
		Text:       text,
		SenderType: models.SenderCompany,
		Timestamp:  timestamp,
		Pending:    true,
	}
	t.messages = append(t.messages, msg)
	return msg
}

// AppendPendingMedia adds an optimistic placeholder for a media send.
func (t *Thread) AppendPendingMedia(media models.Media, caption, timestamp string) models.Message {
	msg := models.Message{
		ID:         models.TempIDPrefix + uuid.NewString(),
		Text:       caption,
		SenderType: models.SenderCompany,
		Timestamp:  timestamp,
		Media:      &media,
		Pending:    true,
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Confirm patches the placeholder in place with the backend's record,
// keeping its position in the thread.
func (t *Thread) Confirm(tempID string, confirmed models.Message) bool {
	for i := range t.messages {
		if t.messages[i].ID == tempID {
			if confirmed.ID == "" {
				confirmed.ID = tempID
			}
			if confirmed.Text == "" {
				confirmed.Text = t.messages[i].Text
			}
			if confirmed.Timestamp == "" {
				confirmed.Timestamp = t.messages[i].Timestamp
			}
			confirmed.SenderType = models.SenderCompany
			confirmed.Pending = false
			confirmed.Failed = false
			t.messages[i] = confirmed
			return true
		}
	}
	return false
}

// ConfirmMedia patches a media placeholder with the upload result's real
// message id and stored file details.
func (t *Thread) ConfirmMedia(tempID, messageID string, media models.Media) bool {
	for i := range t.messages {
		if t.messages[i].ID == tempID {
			t.messages[i].ID = messageID
			t.messages[i].Media = &media
			t.messages[i].Pending = false
			t.messages[i].Failed = false
			return true
		}
	}
	return false
}

// MarkFailed flags a placeholder so the view can offer a retry.
func (t *Thread) MarkFailed(tempID string) bool {
	for i := range t.messages {
		if t.messages[i].ID == tempID {
			t.messages[i].Pending = false
			t.messages[i].Failed = true
			return true
		}
	}
	return false
}

// Retry flips a failed placeholder back to pending and returns it so the
// caller can re-issue the send.
func (t *Thread) Retry(tempID string) (models.Message, bool) {
	for i := range t.messages {
		if t.messages[i].ID == tempID && t.messages[i].Failed {
			t.messages[i].Failed = false
			t.messages[i].Pending = true
			return t.messages[i], true
		}
	}
	return models.Message{}, false
}

// Remove drops a placeholder, used when a media upload is abandoned.
func (t *Thread) Remove(tempID string) bool {
	for i := range t.messages {
		if t.messages[i].ID == tempID {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}

// ApplyEvent folds a realtime event into the thread. Events for other
// contacts are ignored. A company-sent echo first tries to settle the
// most recent pending placeholder with the same body, so the optimistic
// message and its echo never show up twice. Reports whether the thread
// changed.
func (t *Thread) ApplyEvent(event models.MessageEvent) bool {
	if event.ContactID != t.contactID {
		return false
	}

	incoming := models.Message{
		ID:         event.MessageID,
		Text:       event.Text,
		SenderType: event.SenderType,
		Timestamp:  event.Timestamp,
		Media:      event.Media,
	}

	if incoming.FromCompany() {
		for i := len(t.messages) - 1; i >= 0; i-- {
			msg := t.messages[i]
			if (msg.Pending || msg.Failed) && msg.FromCompany() && msg.Text == incoming.Text {
				if incoming.ID == "" {
					incoming.ID = msg.ID
				}
				if incoming.Media == nil {
					incoming.Media = msg.Media
				}
				t.messages[i] = incoming
				return true
			}
		}
	}

	if t.contains(incoming) {
		return false
	}
	t.messages = append(t.messages, incoming)
	return true
}

// contains reports whether the thread already holds this message, by id
// or by the timestamp, body and sender triple. Both checks always run:
// an id-bearing echo of a message first stored without an id still has
// to match.
func (t *Thread) contains(candidate models.Message) bool {
	for _, msg := range t.messages {
		if candidate.ID != "" && msg.ID == candidate.ID {
			return true
		}
		if msg.Timestamp == candidate.Timestamp &&
			msg.Text == candidate.Text &&
			msg.SenderType == candidate.SenderType {
			return true
		}
	}
	return false
}
