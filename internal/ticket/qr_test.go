package ticket

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestEncodePNG(t *testing.T) {
	png, err := EncodePNG("MUSDA|" + strings.Repeat("ab", 32))
	require.NoError(t, err)
	require.Greater(t, len(png), 4)
	assert.Equal(t, pngMagic, png[:4])
}

func TestEncodePNGDeterministic(t *testing.T) {
	payload := "MUSDA|" + strings.Repeat("cd", 32)
	a, err := EncodePNG(payload)
	require.NoError(t, err)
	b, err := EncodePNG(payload)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeDataURL(t *testing.T) {
	url, err := EncodeDataURL("MUSDA|" + strings.Repeat("ef", 32))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, pngMagic, raw[:4])
}
