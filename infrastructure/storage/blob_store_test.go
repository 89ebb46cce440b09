package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"friendly-chat/contract"
	"friendly-chat/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"gocloud.dev/gcerrors"
)

func TestBlobStore_UploadAndFileURL(t *testing.T) {
	req := require.New(t)
	root := t.TempDir()
	store, err := NewBlobStore(root, "", logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	handle, err := store.Upload(ctx, "u1/cat.png", []byte("meow"), "image/png")
	req.NoError(err)
	req.Equal("u1/cat.png", handle.Path)
	req.Equal(int64(4), handle.Size)

	attrs, err := store.bucket.Attributes(ctx, handle.Path)
	req.NoError(err)
	req.Equal("image/png", attrs.ContentType)
	req.Equal(int64(4), attrs.Size)

	content, err := os.ReadFile(filepath.Join(root, "u1", "cat.png"))
	req.NoError(err)
	req.Equal("meow", string(content))

	url, err := store.PublicURL(ctx, handle)
	req.NoError(err)
	req.True(strings.HasPrefix(url, "file://"))
	req.True(strings.HasSuffix(url, "/u1/cat.png"))
}

func TestBlobStore_BaseURLEscapesSegments(t *testing.T) {
	req := require.New(t)
	store, err := NewBlobStore(t.TempDir(), "http://localhost:9000/blobs/", logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)
	ctx := context.Background()

	handle, err := store.Upload(ctx, "u1/my cat.png", []byte("meow"), "image/png")
	req.NoError(err)

	url, err := store.PublicURL(ctx, handle)
	req.NoError(err)
	req.Equal("http://localhost:9000/blobs/u1/my%20cat.png", url)
}

func TestBlobStore_RejectsEscapingPaths(t *testing.T) {
	req := require.New(t)
	root := filepath.Join(t.TempDir(), "blobs")
	store, err := NewBlobStore(root, "", logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)
	ctx := context.Background()

	for _, p := range []string{"", "/", "../outside.png", "u1/../../outside.png"} {
		_, err = store.Upload(ctx, p, []byte("x"), "image/png")
		req.ErrorIs(err, errors.ErrInvalidPath, p)
	}
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "outside.png"))
	req.True(os.IsNotExist(err))
}

func TestBlobStore_OverwriteKeepsLatestContent(t *testing.T) {
	req := require.New(t)
	root := t.TempDir()
	store, err := NewBlobStore(root, "", logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)
	ctx := context.Background()

	_, err = store.Upload(ctx, "u1/cat.png", []byte("first"), "image/png")
	req.NoError(err)
	handle, err := store.Upload(ctx, "/u1//cat.png", []byte("second"), "image/png")
	req.NoError(err)
	req.Equal("u1/cat.png", handle.Path)

	content, err := os.ReadFile(filepath.Join(root, "u1", "cat.png"))
	req.NoError(err)
	req.Equal("second", string(content))
}

func TestBlobStore_PublicURLOfMissingBlob(t *testing.T) {
	req := require.New(t)
	store, err := NewBlobStore(t.TempDir(), "", logs.GetLoggerFromLevel(slog.LevelDebug))
	req.NoError(err)

	_, err = store.PublicURL(context.Background(), contract.BlobHandle{Path: "u1/nothing.png"})
	req.Error(err)
	req.Equal(gcerrors.NotFound, gcerrors.Code(err))
}
