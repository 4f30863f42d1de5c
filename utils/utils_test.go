package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandBytesToBase62(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token := RandBytesToBase62(16)
		assert.NotEmpty(t, token)
		assert.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"please fix the sky", "please fix the sky"},
		{"  <b>brighter</b> please ", "brighter please"},
		{"<script>alert(1)</script>crop left", "crop left"},
		{"Anna & Ben", "Anna & Ben"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}

func TestGetDatesString(t *testing.T) {
	assert.Equal(t, "empty :(", GetDatesString(0, 100))
	assert.Equal(t, "2 Oct 2023", GetDatesString(1696258800, 1696258800+3600))
	assert.Equal(t, "2 Oct 2023 - 5 Oct 2023", GetDatesString(1696258800, 1696258800+3*86400))
}
