package mediacache

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	calls       int
	body        string
	contentType string
}

func (f *fakeDownloader) DownloadMedia(_ context.Context, _ string, w io.Writer) (string, error) {
	f.calls++
	_, err := io.WriteString(w, f.body)
	return f.contentType, err
}

func TestFetchDownloadsOnceAndCaches(t *testing.T) {
	downloader := &fakeDownloader{body: "jpegbytes", contentType: "image/jpeg"}
	cache, err := Open(t.TempDir(), downloader)
	require.NoError(t, err)
	defer cache.Close()

	entry, err := cache.Fetch(context.Background(), "801", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", entry.ContentType)
	assert.Equal(t, int64(len("jpegbytes")), entry.SizeBytes)

	data, err := os.ReadFile(entry.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))

	again, err := cache.Fetch(context.Background(), "801", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, entry.FilePath, again.FilePath)
	assert.Equal(t, 1, downloader.calls)
}

func TestLookupDropsRowWhenBlobIsGone(t *testing.T) {
	downloader := &fakeDownloader{body: "bytes", contentType: "application/pdf"}
	cache, err := Open(t.TempDir(), downloader)
	require.NoError(t, err)
	defer cache.Close()

	entry, err := cache.Fetch(context.Background(), "44", "invoice.pdf")
	require.NoError(t, err)
	require.NoError(t, os.Remove(entry.FilePath))

	_, ok := cache.Lookup("44")
	assert.False(t, ok)

	refetched, err := cache.Fetch(context.Background(), "44", "invoice.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, downloader.calls)
	assert.FileExists(t, refetched.FilePath)
}

func TestStoredNameFallsBackToContentType(t *testing.T) {
	assert.Equal(t, "9-photo.jpg", storedName("9", "photo.jpg", "image/jpeg"))
	name := storedName("9", "", "application/pdf")
	assert.Equal(t, "9.pdf", name)
	assert.Equal(t, "9.bin", storedName("9", "", ""))
}
