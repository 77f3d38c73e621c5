package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Alice Smith", want: "alice smith"},
		{name: "accents stripped", input: "José Ångström", want: "jose angstrom"},
		{name: "whitespace trimmed", input: "  Alice Smith \n", want: "alice smith"},
		{name: "already normalized", input: "alice smith", want: "alice smith"},
		{name: "empty", input: "", want: ""},
		{name: "mixed case diacritics", input: "Zoë MÜLLER", want: "zoe muller"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	once := Normalize("Séan Ó Brádaigh")
	assert.Equal(t, once, Normalize(once))
}
