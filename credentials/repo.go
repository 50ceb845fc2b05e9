// Package credentials is the durable slot that survives restarts and holds the bearer token
// between runs. Absence of the slot means there is no session to verify.
package credentials

import (
	"context"

	perrors "github.com/jrsteele09/go-intern-portal/internal/errors"
)

// ErrNotFound is returned by Get when the slot is empty.
var ErrNotFound = perrors.ErrNotFound

type Repo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the slot. Deleting an empty slot is not an error.
	Delete(ctx context.Context, key string) error
}
