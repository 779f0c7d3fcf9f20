// Package feeds writes scrape results as jsonlines feed files, either
// to the local filesystem or to Azure Blob Storage, using the blob
// naming convention the legacy pipeline established so downstream
// consumers keep working.
package feeds

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"city-scrapers-det/lib/meeting"
)

type Store interface {
	Put(ctx context.Context, blobPath string, contents []byte) error
}

// BlobPath renders "<year>/<month>/<day>/<HHMM>/<scraper>.json".
// The .json extension is kept even though the content is jsonlines.
func BlobPath(scraperName string, now time.Time) string {
	return fmt.Sprintf(
		"%04d/%02d/%02d/%02d%02d/%s.json",
		now.Year(), now.Month(), now.Day(),
		now.Hour(), now.Minute(),
		scraperName,
	)
}

// Write renders events as jsonlines and stores them under the
// timestamped blob path. Empty result sets are skipped: an empty feed
// file is indistinguishable from a broken scraper.
func Write(ctx context.Context, store Store, scraperName string, events []meeting.Event, now time.Time) (string, error) {
	if len(events) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	err := meeting.WriteEvents(&buf, events)
	if err != nil {
		return "", fmt.Errorf("encode feed: %w", err)
	}

	blobPath := BlobPath(scraperName, now)
	err = store.Put(ctx, blobPath, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("store feed: %w", err)
	}
	return blobPath, nil
}

type FilesystemStore struct {
	root string
}

func NewFilesystemStore(root string) FilesystemStore {
	return FilesystemStore{root: root}
}

func (s FilesystemStore) Put(ctx context.Context, blobPath string, contents []byte) error {
	fullPath := filepath.Join(s.root, filepath.FromSlash(path.Clean(blobPath)))
	err := os.MkdirAll(filepath.Dir(fullPath), 0777)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, contents, 0666)
}
