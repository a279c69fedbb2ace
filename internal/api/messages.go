package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tnslabs/waconsole/internal/models"
)

type rawMessage struct {
	ID          flexString `json:"id"`
	MessageText string     `json:"message_text"`
	Message     string     `json:"message"`
	SenderType  string     `json:"sender_type"`
	Timestamp   flexString `json:"timestamp"`

	MediaType     string `json:"media_type"`
	MediaFilePath string `json:"media_file_path"`
	MediaFileName string `json:"media_file_name"`
}

func (r rawMessage) toModel() models.Message {
	msg := models.Message{
		ID:         r.ID.String(),
		Text:       firstNonEmpty(r.MessageText, r.Message),
		SenderType: firstNonEmpty(r.SenderType, models.SenderCustomer),
		Timestamp:  r.Timestamp.String(),
	}
	if r.MediaFilePath != "" || r.MediaType != "" {
		msg.Media = &models.Media{
			Type:     r.MediaType,
			FilePath: r.MediaFilePath,
			FileName: r.MediaFileName,
		}
	}
	return msg
}

// Messages fetches the full history for a contact. The list arrives in
// chronological order and is displayed as-is; ordering is the backend's
// contract, not something the client re-sorts.
func (c *Client) Messages(ctx context.Context, contactID string) ([]models.Message, error) {
	query := url.Values{"contact_id": {contactID}}
	var out struct {
		envelope
		Messages []rawMessage `json:"messages"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "getMessages.php", query, nil, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, envelopeError("getMessages.php", out.envelope)
	}

	messages := make([]models.Message, 0, len(out.Messages))
	for _, raw := range out.Messages {
		messages = append(messages, raw.toModel())
	}
	return messages, nil
}

// SendText posts a plain text message for a contact.
func (c *Client) SendText(ctx context.Context, contactID, text string) error {
	var out envelope
	body := map[string]string{"contact_id": contactID, "message": text}
	if err := c.doJSON(ctx, http.MethodPost, "sendMessage.php", nil, body, &out); err != nil {
		return err
	}
	if !out.OK {
		return envelopeError("sendMessage.php", out)
	}
	return nil
}
