package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Local writes artifacts into a directory on the local filesystem,
// creating the directory path if it does not exist.
type Local struct {
	path string
	lo   *slog.Logger
}

// NewLocal returns a Local target writing into path.
func NewLocal(path string, lo *slog.Logger) (*Local, error) {
	if path == "" {
		return nil, fmt.Errorf("delivery.local.path is empty")
	}

	return &Local{path: path, lo: lo}, nil
}

func (t *Local) Deliver(ctx context.Context, filename string, b []byte) error {
	if err := os.MkdirAll(t.path, 0755); err != nil {
		return &DeliveryError{Method: MethodLocal, Err: err}
	}

	out := filepath.Join(t.path, filename)
	if err := os.WriteFile(out, b, 0644); err != nil {
		return &DeliveryError{Method: MethodLocal, Err: err}
	}

	t.lo.Info("file saved locally", "path", out, "bytes", len(b))

	return nil
}
