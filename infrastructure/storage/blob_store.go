package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"friendly-chat/contract"
	"friendly-chat/errors"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
)

const localBucket = "local"

// BlobStore keeps uploads in a file bucket below a root directory.
type BlobStore struct {
	bucket  *blob.Bucket
	root    string
	baseURL string
	log     *slog.Logger
}

// NewBlobStore serves public URLs from baseURL, or as file:// URLs when empty.
func NewBlobStore(root, baseURL string, log *slog.Logger) (*BlobStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	bucket, err := fileblob.OpenBucket(abs, &fileblob.Options{CreateDir: true, NoTempDir: true})
	if err != nil {
		return nil, fmt.Errorf("open blob directory: %w", err)
	}
	return &BlobStore{bucket: bucket, root: abs, baseURL: strings.TrimSuffix(baseURL, "/"), log: log}, nil
}

// Upload is atomic: readers never see a partial blob.
func (b *BlobStore) Upload(ctx context.Context, blobPath string, data []byte, contentType string) (contract.BlobHandle, error) {
	key, err := blobKey(blobPath)
	if err != nil {
		return contract.BlobHandle{}, err
	}
	if err := b.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: contentType}); err != nil {
		return contract.BlobHandle{}, err
	}
	b.log.Debug("Blob stored", "path", key, "content_type", contentType, "size", len(data))
	return contract.BlobHandle{Bucket: localBucket, Path: key, Size: int64(len(data))}, nil
}

func (b *BlobStore) PublicURL(ctx context.Context, handle contract.BlobHandle) (string, error) {
	key, err := blobKey(handle.Path)
	if err != nil {
		return "", err
	}
	if _, err := b.bucket.Attributes(ctx, key); err != nil {
		return "", err
	}
	if b.baseURL != "" {
		segments := strings.Split(key, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		return b.baseURL + "/" + strings.Join(segments, "/"), nil
	}
	target := filepath.Join(b.root, filepath.FromSlash(key))
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(target)}).String(), nil
}

func (b *BlobStore) Close() error {
	return b.bucket.Close()
}

// blobKey cleans blobPath into a bucket key. Empty keys and ".." segments are rejected.
func blobKey(blobPath string) (string, error) {
	for _, segment := range strings.Split(blobPath, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %q", errors.ErrInvalidPath, blobPath)
		}
	}
	key := strings.TrimPrefix(path.Clean("/"+blobPath), "/")
	if key == "" {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidPath, blobPath)
	}
	return key, nil
}
