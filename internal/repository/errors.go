// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation service to distinguish between different failure scenarios
// without depending on driver error codes.
package repository

import "errors"

// ErrNotFound is returned when a lookup by primary key or unique code
// matches no row.
var ErrNotFound = errors.New("not found")

// ErrStatusChanged is returned by compare-and-set status updates when the
// row is no longer in the expected status, i.e. another request moved it
// first. Callers should re-read and decide again.
var ErrStatusChanged = errors.New("reservation status changed concurrently")

// ErrConflict is returned when an insert violates a unique constraint,
// such as a second check-in row for the same reservation. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
