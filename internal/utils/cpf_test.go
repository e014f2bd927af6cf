package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCPF(t *testing.T) {
	valid := []string{
		"123.456.789-09",
		"000.000.000-00",
		"987.654.321-10",
	}
	for _, s := range valid {
		assert.True(t, IsCPF(s), s)
	}

	invalid := []string{
		"",
		"12345678909",       // unformatted
		"123.456.789-0",     // short check digits
		"123.456.789-091",   // too long
		"123-456-789.09",    // wrong separators
		"abc.def.ghi-jk",    // letters
		"123.456.78 9-09",   // stray space
		" 123.456.789-09",   // leading space
	}
	for _, s := range invalid {
		assert.False(t, IsCPF(s), "%q", s)
	}
}
