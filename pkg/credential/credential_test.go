package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, Credential{Name: "HomeNet", Secret: "secret123"}.Validate())
	})

	t.Run("OpenNetwork", func(t *testing.T) {
		c := Credential{Name: "Guest"}
		assert.NoError(t, c.Validate())
		assert.True(t, c.IsOpen())
	})

	t.Run("EmptyName", func(t *testing.T) {
		assert.ErrorIs(t, Credential{Secret: "x"}.Validate(), ErrEmptyName)
	})

	t.Run("NameTooLong", func(t *testing.T) {
		c := Credential{Name: strings.Repeat("n", NameCapacity)}
		assert.ErrorIs(t, c.Validate(), ErrNameTooLong)
	})

	t.Run("SecretTooLong", func(t *testing.T) {
		c := Credential{Name: "n", Secret: strings.Repeat("s", SecretCapacity)}
		assert.ErrorIs(t, c.Validate(), ErrSecretTooLong)
	})

	t.Run("ControlBytes", func(t *testing.T) {
		c := Credential{Name: "n\x00", Secret: "s"}
		assert.ErrorIs(t, c.Validate(), ErrControlBytes)
	})
}

func TestCredentialString(t *testing.T) {
	assert.Equal(t, "HomeNet/*********", Credential{Name: "HomeNet", Secret: "secret123"}.String())
	assert.Equal(t, "Guest/<open>", Credential{Name: "Guest"}.String())
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "plain", Sanitize("plain"))
	assert.Equal(t, "a_b_c", Sanitize("a\tb\nc"))
}
