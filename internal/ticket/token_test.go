package ticket

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)
	assert.Len(t, token, TokenHexLen)
	assert.Equal(t, strings.ToLower(token), token)

	other, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestBuildAndParsePayload(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)

	payload := BuildPayload("MUSDA", token)
	assert.Equal(t, "MUSDA|"+token, payload)

	got, err := ParsePayload("MUSDA", payload)
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestParsePayloadBareToken(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)

	got, err := ParsePayload("MUSDA", token)
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestParsePayloadTrimsAndLowercases(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)

	got, err := ParsePayload("MUSDA", "  MUSDA|"+strings.ToUpper(token)+"\n")
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestParsePayloadRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"prefix only", "MUSDA|"},
		{"short token", "MUSDA|abc123"},
		{"non-hex token", "MUSDA|" + strings.Repeat("zz", 32)},
		{"wrong namespace keeps prefix", "OTHER|" + strings.Repeat("ab", 32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload("MUSDA", tt.in)
			assert.ErrorIs(t, err, ErrBadPayload)
		})
	}
}
