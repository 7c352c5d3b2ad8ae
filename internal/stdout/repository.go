package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Repository prints artifacts to stdout, one after another. Useful for
// inspecting small exports without touching a filesystem or bucket.
type Repository struct{}

func New() *Repository {
	return &Repository{}
}

func (r *Repository) Write(ctx context.Context, key string, reader io.Reader) error {
	fmt.Printf("--- %s ---\n", key)
	_, err := io.Copy(os.Stdout, reader)
	return err
}
