package errors_test

import (
	"fmt"
	"testing"

	perrors "github.com/jrsteele09/go-intern-portal/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.NoError(t, perrors.Wrapf(nil, "reading %s", "token"))

	err := perrors.Wrapf(perrors.ErrNotFound, "reading %s", "token")
	require.EqualError(t, err, "reading token: not found")
	require.True(t, perrors.Is(err, perrors.ErrNotFound))
}

type statusErr struct{ code int }

func (e *statusErr) Error() string { return fmt.Sprintf("status %d", e.code) }

func TestAs(t *testing.T) {
	err := fmt.Errorf("upload: %w", &statusErr{code: 502})

	var se *statusErr
	require.True(t, perrors.As(err, &se))
	require.Equal(t, 502, se.code)
}
