package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", SanitizeEmail("  A@X.COM "))
	assert.Equal(t, "a@x.com", SanitizeEmail("<b>a@x.com</b>"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "A &amp; B", SanitizeString("  A & B "))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@x.com"))
	assert.True(t, IsValidEmail(" A@X.COM "))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("a@x"))
}
