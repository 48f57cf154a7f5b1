package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^\d{6}$`, code)
		seen[code] = true
	}
	// 20 одинаковых кодов подряд почти невозможны
	assert.Greater(t, len(seen), 1)
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{
			name:  "ten digits",
			phone: "9876543210",
			want:  "+919876543210",
		},
		{
			name:  "with country code",
			phone: "919876543210",
			want:  "+919876543210",
		},
		{
			name:  "already formatted",
			phone: "+919876543210",
			want:  "+919876543210",
		},
		{
			name:  "with separators",
			phone: "98765-43210",
			want:  "+919876543210",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhoneNumber(tt.phone))
		})
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{
			name:  "valid ten digits",
			phone: "9876543210",
			want:  true,
		},
		{
			name:  "valid with prefix",
			phone: "+91 98765 43210",
			want:  true,
		},
		{
			name:  "starts with wrong digit",
			phone: "1234567890",
			want:  false,
		},
		{
			name:  "too short",
			phone: "98765",
			want:  false,
		},
		{
			name:  "empty",
			phone: "",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPhoneNumber(tt.phone))
		})
	}
}
