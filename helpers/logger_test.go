package helpers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "failures.log")
	failures := NewFailureLog(path)

	failures.RecordFailure("Kaufland", errors.New("page load timeout"))
	failures.RecordFailure("Aldi", errors.New("rate limited"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[Kaufland] page load timeout")
	assert.Contains(t, lines[1], "[Aldi] rate limited")
}
