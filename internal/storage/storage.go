package storage

import "context"

// ObjectInfo represents metadata for a stored report artifact.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations report
// publishing needs.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
	DownloadObject(ctx context.Context, key string) ([]byte, error)
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
