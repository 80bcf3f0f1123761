package sessionid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var sessionIDPattern = regexp.MustCompile(`^[0-9A-Z]{6}$`)

func TestNewIDShape(t *testing.T) {
	t.Parallel()

	gen := New()
	seen := map[string]struct{}{}
	for range 200 {
		id, err := gen.NewID()
		require.NoError(t, err)
		require.Regexp(t, sessionIDPattern, id)
		seen[id] = struct{}{}
	}
	require.Greater(t, len(seen), 190)
}
