package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{12.5, "12.5"},
		{1000, "1k"},
		{1250, "1.3k"},
		{12512, "12.5k"},
		{50000, "50k"},
		{-4321, "-4.3k"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compact(tt.in), "Compact(%g)", tt.in)
	}
}

func TestCommas(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234567, "1,234,567"},
		{1500.9, "1,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Commas(tt.in), "Commas(%g)", tt.in)
	}
}
