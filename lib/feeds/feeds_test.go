package feeds

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"city-scrapers-det/lib/meeting"

	"github.com/stretchr/testify/require"
)

var feedTime = time.Date(2024, 9, 5, 14, 7, 33, 0, time.UTC)

func TestBlobPath(t *testing.T) {
	require.Equal(
		t,
		"2024/09/05/1407/det_board_ethics.json",
		BlobPath("det_board_ethics", feedTime),
	)
}

func TestWriteToFilesystem(t *testing.T) {
	dir := t.TempDir()
	store := NewFilesystemStore(dir)

	events := []meeting.Event{
		{ID: "det_a/202409051000/x/board", Name: "Board"},
		{ID: "det_a/202409121000/x/board", Name: "Board"},
	}

	blobPath, err := Write(context.Background(), store, "det_a", events, feedTime)
	require.NoError(t, err)
	require.Equal(t, "2024/09/05/1407/det_a.json", blobPath)

	contents, err := os.ReadFile(filepath.Join(dir, "2024", "09", "05", "1407", "det_a.json"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, lines, 2)
}

func TestWriteSkipsEmptyResults(t *testing.T) {
	store := NewFilesystemStore(t.TempDir())
	blobPath, err := Write(context.Background(), store, "det_a", nil, feedTime)
	require.NoError(t, err)
	require.Empty(t, blobPath)
}

func TestStringToSign(t *testing.T) {
	got := stringToSign(
		"PUT",
		42,
		map[string]string{
			"x-ms-blob-type": "BlockBlob",
			"x-ms-date":      "Thu, 05 Sep 2024 14:07:33 GMT",
			"x-ms-version":   "2020-10-02",
			"content-type":   "application/json",
		},
		"/myaccount/feeds/2024/09/05/1407/det_a.json",
	)

	expected := strings.Join([]string{
		"PUT",
		"",
		"",
		"42",
		"",
		"application/json",
		"",
		"",
		"",
		"",
		"",
		"",
		"x-ms-blob-type:BlockBlob",
		"x-ms-date:Thu, 05 Sep 2024 14:07:33 GMT",
		"x-ms-version:2020-10-02",
		"/myaccount/feeds/2024/09/05/1407/det_a.json",
	}, "\n")
	require.Equal(t, expected, got)
}
