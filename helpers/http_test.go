package helpers

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserHeaders(t *testing.T) {
	headers := BrowserHeaders()

	assert.Contains(t, userAgents, headers["User-Agent"])
	assert.Contains(t, referers, headers["Referer"])
	assert.NotEmpty(t, headers["Accept"])
	assert.Contains(t, headers["Accept-Language"], "de-DE")
}

func TestToUTF8(t *testing.T) {
	reader, err := ToUTF8([]byte("<html><body>Gültig ab Montag</body></html>"), "text/html; charset=utf-8")
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>Gültig ab Montag</body></html>", string(body))
}

func TestToUTF8NonUTF8(t *testing.T) {
	// "Gültig" in ISO-8859-1
	latin1 := []byte("<html><body>G\xfcltig</body></html>")

	reader, err := ToUTF8(latin1, "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Gültig")
}

func TestRandomDuration(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := RandomDuration(500*time.Millisecond, time.Second)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, time.Second)
	}

	assert.Equal(t, time.Second, RandomDuration(time.Second, time.Second))
	assert.Equal(t, time.Duration(0), RandomDuration(0, 0))
}
