package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnslabs/waconsole/internal/apperrors"
	"github.com/tnslabs/waconsole/internal/models"
)

func TestClassifyMedia(t *testing.T) {
	tests := []struct {
		fileName string
		expected string
	}{
		{"photo.jpg", models.MediaImage},
		{"photo.PNG", models.MediaImage},
		{"clip.mp4", models.MediaVideo},
		{"note.webm", models.MediaVideo},
		{"invoice.pdf", models.MediaDocument},
		{"report", models.MediaDocument},
	}

	for _, tc := range tests {
		t.Run(tc.fileName, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyMedia(tc.fileName))
		})
	}
}

func TestUploadMediaRejectsOversizedFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("oversized file must be rejected before any request")
	}))
	defer srv.Close()

	client, err := New(Options{BaseURL: srv.URL, MaxUploadBytes: 4})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(path, []byte("more than four bytes"), 0o644))

	_, err = client.UploadMedia(context.Background(), "1", path, "")
	assert.ErrorIs(t, err, apperrors.ErrMediaTooLarge)
}

func TestUploadMedia(t *testing.T) {
	var gotContactID, gotCaption, gotFileName string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotContactID = r.FormValue("contact_id")
		gotCaption = r.FormValue("message")
		file, header, err := r.FormFile("media")
		require.NoError(t, err)
		defer file.Close()
		gotFileName = header.Filename

		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":              true,
			"message_id":      801,
			"media_type":      "image",
			"media_file_path": "/m/801.jpg",
			"media_file_name": "photo.jpg",
		})
	}))

	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpegbytes"), 0o644))

	result, err := client.UploadMedia(context.Background(), "7", path, "look at this")
	require.NoError(t, err)
	assert.Equal(t, "7", gotContactID)
	assert.Equal(t, "look at this", gotCaption)
	assert.Equal(t, "photo.jpg", gotFileName)
	assert.Equal(t, "801", result.MessageID)
	assert.Equal(t, models.MediaImage, result.Media.Type)
}

func TestDownloadMedia(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "801", r.URL.Query().Get("message_id"))
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegbytes"))
	}))

	var buf bytes.Buffer
	contentType, err := client.DownloadMedia(context.Background(), "801", &buf)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, "jpegbytes", buf.String())
}
