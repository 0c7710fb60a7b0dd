package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCSRFToken(t *testing.T) {
	token := GenerateCSRFToken()

	assert.Len(t, token, 64)
	// Hex alphabet only
	for _, c := range token {
		assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'), "unexpected character %q", c)
	}

	assert.NotEqual(t, token, GenerateCSRFToken())
}

func TestVerifyCSRF(t *testing.T) {
	token := GenerateCSRFToken()

	t.Run("matching_token", func(t *testing.T) {
		assert.True(t, VerifyCSRF(token, token))
	})

	t.Run("single_character_mutation", func(t *testing.T) {
		mutated := []byte(token)
		if mutated[0] == 'a' {
			mutated[0] = 'b'
		} else {
			mutated[0] = 'a'
		}
		assert.False(t, VerifyCSRF(token, string(mutated)))
	})

	t.Run("empty_candidate", func(t *testing.T) {
		assert.False(t, VerifyCSRF(token, ""))
	})

	t.Run("empty_session_token_never_matches", func(t *testing.T) {
		assert.False(t, VerifyCSRF("", ""))
		assert.False(t, VerifyCSRF("", "anything"))
	})

	t.Run("length_mismatch", func(t *testing.T) {
		assert.False(t, VerifyCSRF(token, token[:63]))
		assert.False(t, VerifyCSRF(token, token+"0"))
	})
}

func TestCSRFField(t *testing.T) {
	token := GenerateCSRFToken()
	field := CSRFField(token)

	assert.Equal(t, `<input type="hidden" name="csrf_token" value="`+token+`">`, field)
}

func TestCSRFField_EscapesValue(t *testing.T) {
	field := CSRFField(`"><script>alert(1)</script>`)

	require.NotContains(t, field, "<script>")
	assert.True(t, strings.HasPrefix(field, `<input type="hidden" name="csrf_token" value="`))
	assert.Contains(t, field, "&lt;script&gt;")
}
