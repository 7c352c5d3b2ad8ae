package gcs

import (
	"context"
	"io"
	"path/filepath"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type Option func(*Repository)

func WithBucket(bucket string) Option {
	return func(r *Repository) {
		r.Bucket = bucket
	}
}

func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.Prefix = prefix
	}
}

func WithCredentialsFile(credentialsFile string) Option {
	return func(r *Repository) {
		r.CredentialsFile = credentialsFile
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

type Repository struct {
	logger *zap.Logger
	client *storage.Client

	Bucket          string
	Prefix          string
	CredentialsFile string
}

func New(ctx context.Context, opts ...Option) (*Repository, error) {
	r := &Repository{
		logger: zap.NewNop(),
	}

	for _, o := range opts {
		o(r)
	}

	var clientOpts []option.ClientOption
	if r.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(r.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}
	r.client = client

	return r, nil
}

// Write uploads the artifact as a single object. The object only becomes
// visible after a successful Close, so partial uploads are never observable.
func (r *Repository) Write(ctx context.Context, key string, reader io.Reader) error {
	objPath := filepath.Join(
		r.Prefix,
		key,
	)

	r.logger.Debug(
		"gcs write",
		zap.String("key", key),
		zap.String("prefix", r.Prefix),
		zap.String("object_path", objPath),
		zap.String("bucket", r.Bucket),
	)

	w := r.client.Bucket(r.Bucket).Object(objPath).NewWriter(ctx)

	if _, err := io.Copy(w, reader); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

func (r *Repository) Close() error {
	return r.client.Close()
}
