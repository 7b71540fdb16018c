//go:build unit

package errs_test

import (
	"fmt"
	"testing"

	"solestore/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct {
	code int
}

func (e *codedError) Error() string { return fmt.Sprintf("code %d", e.code) }

func TestIs(t *testing.T) {
	sentinel := errs.New("widget not found")

	t.Run("sees a mark attached to a cause", func(t *testing.T) {
		err := errs.Mark(errs.New("no rows in result set"), sentinel)
		assert.True(t, errs.Is(err, sentinel))
	})

	t.Run("sees a mark under later wrap layers", func(t *testing.T) {
		err := errs.Wrap(errs.Mark(errs.New("no rows in result set"), sentinel), "loading widget")
		assert.True(t, errs.Is(err, sentinel))
	})

	t.Run("matches a bare sentinel", func(t *testing.T) {
		assert.True(t, errs.Is(sentinel, sentinel))
	})

	t.Run("matches through a %w wrap", func(t *testing.T) {
		err := fmt.Errorf("loading widget: %w", sentinel)
		assert.True(t, errs.Is(err, sentinel))
	})

	t.Run("does not match an unrelated sentinel", func(t *testing.T) {
		other := errs.New("gadget not found")
		err := errs.Mark(errs.New("no rows in result set"), sentinel)
		assert.False(t, errs.Is(err, other))
	})

	t.Run("mark on a nil cause is the sentinel itself", func(t *testing.T) {
		err := errs.Mark(nil, sentinel)
		assert.True(t, errs.Is(err, sentinel))
	})
}

func TestAs(t *testing.T) {
	t.Run("extracts a typed cause through a mark", func(t *testing.T) {
		sentinel := errs.New("widget not found")
		err := errs.Mark(&codedError{code: 42}, sentinel)

		var coded *codedError
		require.True(t, errs.As(err, &coded))
		assert.Equal(t, 42, coded.code)
	})

	t.Run("extracts through wrap layers", func(t *testing.T) {
		err := errs.Wrap(&codedError{code: 7}, "loading widget")

		var coded *codedError
		require.True(t, errs.As(err, &coded))
		assert.Equal(t, 7, coded.code)
	})
}
