package firebase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"friendly-chat/contract"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const (
	downloadTokensKey = "firebaseStorageDownloadTokens"
	// uploadChunkSize makes the writer upload resumably in chunks.
	uploadChunkSize = 256 * 1024
	productionHost  = "https://firebasestorage.googleapis.com"
)

type BlobStore struct {
	bucket     *storage.BucketHandle
	bucketName string
	baseURL    string
	log        *slog.Logger
}

// NewBlobStore serves download URLs from the storage emulator when
// STORAGE_EMULATOR_HOST is set.
func NewBlobStore(bucket *storage.BucketHandle, bucketName string, log *slog.Logger) *BlobStore {
	baseURL := productionHost
	if host := os.Getenv("STORAGE_EMULATOR_HOST"); host != "" {
		baseURL = "http://" + strings.TrimPrefix(strings.TrimPrefix(host, "http://"), "https://")
	}
	return &BlobStore{bucket: bucket, bucketName: bucketName, baseURL: baseURL, log: log}
}

// Upload writes data with a fresh download token, the one a Firebase download URL carries.
func (b *BlobStore) Upload(ctx context.Context, path string, data []byte, contentType string) (contract.BlobHandle, error) {
	w := b.bucket.Object(path).NewWriter(ctx)
	w.ChunkSize = uploadChunkSize
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokensKey: uuid.NewString()}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return contract.BlobHandle{}, err
	}
	if err := w.Close(); err != nil {
		return contract.BlobHandle{}, err
	}

	attrs := w.Attrs()
	b.log.Debug("Object written", "bucket", attrs.Bucket, "name", attrs.Name, "size", attrs.Size)
	return contract.BlobHandle{Bucket: attrs.Bucket, Path: attrs.Name, Size: attrs.Size}, nil
}

func (b *BlobStore) PublicURL(ctx context.Context, handle contract.BlobHandle) (string, error) {
	attrs, err := b.bucket.Object(handle.Path).Attrs(ctx)
	if err != nil {
		return "", err
	}
	token, _, _ := strings.Cut(attrs.Metadata[downloadTokensKey], ",")
	if token == "" {
		return "", fmt.Errorf("object %q has no download token", handle.Path)
	}
	bucket := handle.Bucket
	if bucket == "" {
		bucket = b.bucketName
	}
	return downloadURL(b.baseURL, bucket, handle.Path, token), nil
}

func downloadURL(baseURL, bucket, path, token string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media&token=%s",
		baseURL, bucket, url.PathEscape(path), url.QueryEscape(token))
}
