package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "08012345678", DigitsOnly("0801-234-5678"))
	assert.Equal(t, "12345678901", DigitsOnly("12345678901abc"))
	assert.Equal(t, "", DigitsOnly("no digits here"))
}

func TestTruncateDigits(t *testing.T) {
	assert.Equal(t, "12345678901", TruncateDigits("123456789012345", 11))
	assert.Equal(t, "123", TruncateDigits("1a2b3c", 11))
	assert.Equal(t, "", TruncateDigits("", 10))
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "John A Doe", JoinNonEmpty("John", "A", "Doe"))
	assert.Equal(t, "John Doe", JoinNonEmpty("John", "", "Doe"))
	assert.Equal(t, "John Doe", JoinNonEmpty(" John ", "  ", "Doe"))
	assert.Equal(t, "", JoinNonEmpty("", ""))
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "account_number", ToSnakeCase("AccountNumber"))
	assert.Equal(t, "bvn", ToSnakeCase("BVN"))
	assert.Equal(t, "rc_number", ToSnakeCase("RCNumber"))
}
