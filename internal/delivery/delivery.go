// Package delivery persists rendered artifacts to their destination.
// The set of delivery methods is closed: a local directory or an SFTP
// server. Both overwrite silently if the file already exists.
package delivery

import (
	"context"
	"fmt"
)

// Supported delivery method tags.
const (
	MethodLocal = "local"
	MethodSFTP  = "sftp"
)

// DeliveryError wraps any local or remote write failure. It is fatal to
// the current cycle only.
type DeliveryError struct {
	Method string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("error delivering via '%s': %v", e.Method, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Target persists one rendered artifact under the given filename.
// A Target never retries; retries, if any, belong to the caller.
type Target interface {
	Deliver(ctx context.Context, filename string, b []byte) error
}
