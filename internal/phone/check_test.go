package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck_ValidMalaysianMobile(t *testing.T) {
	v := Check("+60123456789")

	assert.True(t, v.Valid)
	assert.Equal(t, "MY", v.Region)
	assert.True(t, v.Mobile)
	assert.Empty(t, v.Reason)
}

func TestCheck_Garbage(t *testing.T) {
	v := Check(Normalize("abc"))

	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Reason)
	assert.Equal(t, Number("+abc"), v.Number)
}

func TestCheck_TooShort(t *testing.T) {
	v := Check("+601")

	assert.False(t, v.Valid)
}
