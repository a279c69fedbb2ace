// Package mediacache keeps downloaded media blobs on disk, indexed by
// message id in a small sqlite database so repeat opens of the same
// attachment never hit the backend twice.
package mediacache

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/tnslabs/waconsole/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS media (
	message_id   TEXT PRIMARY KEY,
	file_path    TEXT NOT NULL,
	file_name    TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size_bytes   INTEGER NOT NULL,
	fetched_at   INTEGER NOT NULL
);`

// Downloader is the piece of the backend client the cache needs.
type Downloader interface {
	DownloadMedia(ctx context.Context, messageID string, w io.Writer) (string, error)
}

// Entry describes one cached blob.
type Entry struct {
	MessageID   string
	FilePath    string
	FileName    string
	ContentType string
	SizeBytes   int64
}

type Cache struct {
	dir        string
	db         *sql.DB
	downloader Downloader
}

// Open prepares the cache directory and its index. The directory is
// created if missing.
func Open(dir string, downloader Downloader) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mediacache: %w", err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("mediacache: failed to open index: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("mediacache: failed to prepare index: %w", err)
	}
	return &Cache{dir: dir, db: db, downloader: downloader}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached entry for a message, if the index has one
// and the blob is still on disk. A missing blob drops the stale row.
func (c *Cache) Lookup(messageID string) (Entry, bool) {
	var entry Entry
	row := c.db.QueryRow(
		`SELECT message_id, file_path, file_name, content_type, size_bytes FROM media WHERE message_id = ?`,
		messageID)
	if err := row.Scan(&entry.MessageID, &entry.FilePath, &entry.FileName, &entry.ContentType, &entry.SizeBytes); err != nil {
		return Entry{}, false
	}
	if _, err := os.Stat(entry.FilePath); err != nil {
		_, _ = c.db.Exec(`DELETE FROM media WHERE message_id = ?`, messageID)
		return Entry{}, false
	}
	return entry, true
}

// Fetch returns the blob for a message, downloading it on a cache miss.
// fileName seeds the stored name and extension when the backend's
// content type gives nothing usable.
func (c *Cache) Fetch(ctx context.Context, messageID, fileName string) (Entry, error) {
	if entry, ok := c.Lookup(messageID); ok {
		return entry, nil
	}

	tmp, err := os.CreateTemp(c.dir, "download-*")
	if err != nil {
		return Entry{}, fmt.Errorf("mediacache: %w", err)
	}
	tmpPath := tmp.Name()

	contentType, err := c.downloader.DownloadMedia(ctx, messageID, tmp)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tmpPath)
		return Entry{}, err
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return Entry{}, fmt.Errorf("mediacache: %w", closeErr)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return Entry{}, fmt.Errorf("mediacache: %w", err)
	}

	name := storedName(messageID, fileName, contentType)
	finalPath := filepath.Join(c.dir, name)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return Entry{}, fmt.Errorf("mediacache: %w", err)
	}

	entry := Entry{
		MessageID:   messageID,
		FilePath:    finalPath,
		FileName:    name,
		ContentType: contentType,
		SizeBytes:   info.Size(),
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO media (message_id, file_path, file_name, content_type, size_bytes, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.MessageID, entry.FilePath, entry.FileName, entry.ContentType, entry.SizeBytes, time.Now().Unix())
	if err != nil {
		logger.Log.Warn("media index write failed",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
	return entry, nil
}

// storedName builds a stable on-disk name. The message id prefix keeps
// blobs from different messages with the same file name apart.
func storedName(messageID, fileName, contentType string) string {
	if fileName != "" {
		return messageID + "-" + filepath.Base(fileName)
	}
	ext := ".bin"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	return messageID + ext
}
