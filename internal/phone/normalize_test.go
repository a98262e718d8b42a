package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_CountryCodeInference(t *testing.T) {
	tests := []struct {
		name  string
		token any
		want  Number
	}{
		{"leading zero", "0123456789", "+60123456789"},
		{"nine digits leading one", "123456789", "+60123456789"},
		{"already canonical", "+60123456789", "+60123456789"},
		{"country code without plus", "60123456789", "+60123456789"},
		{"ten digits leading one untouched", "1234567890", "+1234567890"},
		{"integer cell", 123456789, "+60123456789"},
		{"integral float cell", float64(123456789), "+60123456789"},
		{"int64 cell", int64(60123456789), "+60123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.token))
		})
	}
}

func TestNormalize_StripsSeparators(t *testing.T) {
	want := Normalize("0123456789")

	assert.Equal(t, want, Normalize("012-345 6789"))
	assert.Equal(t, want, Normalize(" 012 - 345 - 6789 "))
	assert.Equal(t, want, Normalize("012\t345\n6789"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []any{
		"0123456789",
		"123456789",
		"+60123456789",
		"012-345 6789",
		"60 12 345 6789",
		"+1 415 555 0100",
		"abc",
		"",
		float64(123456789),
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "normalize(normalize(%v))", in)
	}
}

func TestNormalize_LenientOnGarbage(t *testing.T) {
	assert.Equal(t, Number("+abc"), Normalize("abc"))
	assert.Equal(t, Number("+"), Normalize(""))
	assert.Equal(t, Number("+"), Normalize(nil))
}

func TestNormalizer_CustomCountryCode(t *testing.T) {
	n := NewNormalizer("65")

	assert.Equal(t, Number("+6591234567"), n.Normalize("091234567"))
	assert.Equal(t, Number("+65123456789"), n.Normalize("123456789"))
}

func TestText(t *testing.T) {
	assert.Equal(t, "123456789", Text(float64(123456789)))
	assert.Equal(t, "12.5", Text(12.5))
	assert.Equal(t, "42", Text(42))
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "+601", Text(Number("+601")))
}
