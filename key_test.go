package brk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	t.Parallel()

	valid := strings.Repeat("0a", KeySize)
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain", valid, false},
		{"upper case", strings.ToUpper(valid), false},
		{"prefixed", "0x" + valid, false},
		{"whitespace", "  " + valid + "\n", false},
		{"too short", valid[:62], true},
		{"too long", valid + "00", true},
		{"not hex", strings.Repeat("zz", KeySize), true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, err := ParseKey(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, KeySize)
			assert.Equal(t, byte(0x0a), key[0])
		})
	}
}
