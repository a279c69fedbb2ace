package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tnslabs/waconsole/internal/apperrors"
	"github.com/tnslabs/waconsole/internal/models"
)

// ClassifyMedia buckets a file into the backend's four media kinds from
// its extension-derived MIME type. Anything unrecognized is a document.
func ClassifyMedia(fileName string) string {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.MediaImage
	case strings.HasPrefix(mimeType, "video/"):
		return models.MediaVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return models.MediaAudio
	default:
		return models.MediaDocument
	}
}

// UploadResult is the backend's acknowledgement of a media upload, used
// to patch the optimistic placeholder with real identifiers.
type UploadResult struct {
	MessageID string
	Media     models.Media
}

// UploadMedia sends a file plus optional caption as multipart form data.
// Files over the configured ceiling are rejected locally before any bytes
// move.
func (c *Client) UploadMedia(ctx context.Context, contactID, filePath, caption string) (UploadResult, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: %w", err)
	}
	if c.maxUploadBytes > 0 && info.Size() > c.maxUploadBytes {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: %s is %d bytes: %w",
			filepath.Base(filePath), info.Size(), apperrors.ErrMediaTooLarge)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", filepath.Base(filePath))
	if err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: %w", err)
	}
	if err := writer.WriteField("contact_id", contactID); err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("message", caption); err != nil {
			return UploadResult{}, fmt.Errorf("uploadMedia.php: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("uploadMedia.php", nil), &buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return UploadResult{}, c.statusError("uploadMedia.php", resp.StatusCode, body)
	}

	var out struct {
		envelope
		MessageID     flexString `json:"message_id"`
		MediaType     string     `json:"media_type"`
		MediaFilePath string     `json:"media_file_path"`
		MediaFileName string     `json:"media_file_name"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return UploadResult{}, fmt.Errorf("uploadMedia.php: failed to decode response: %w", err)
	}
	if !out.OK {
		return UploadResult{}, envelopeError("uploadMedia.php", out.envelope)
	}

	return UploadResult{
		MessageID: out.MessageID.String(),
		Media: models.Media{
			Type:     out.MediaType,
			FilePath: out.MediaFilePath,
			FileName: out.MediaFileName,
		},
	}, nil
}

// DownloadMedia streams the binary blob for a message into w and returns
// its content type.
func (c *Client) DownloadMedia(ctx context.Context, messageID string, w io.Writer) (string, error) {
	query := url.Values{"message_id": {messageID}}
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("getMedia.php", query), nil)
	if err != nil {
		return "", fmt.Errorf("getMedia.php: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("getMedia.php: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", c.statusError("getMedia.php", resp.StatusCode, body)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("getMedia.php: failed to read blob: %w", err)
	}
	return resp.Header.Get("Content-Type"), nil
}
