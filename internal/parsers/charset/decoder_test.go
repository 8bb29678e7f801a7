package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    Encoding
	}{
		{
			name:    "UTF-8 BOM",
			content: []byte{0xEF, 0xBB, 0xBF, 'H', 'i'},
			want:    EncodingUTF8,
		},
		{
			name:    "plain ASCII",
			content: []byte("Variant SKU,Title"),
			want:    EncodingUTF8,
		},
		{
			name:    "UTF-8 multibyte",
			content: []byte("Café"),
			want:    EncodingUTF8,
		},
		{
			name:    "Windows-1252 high byte",
			content: []byte{'C', 'a', 'f', 0xE9},
			want:    EncodingWindows1252,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.content))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		enc     Encoding
		want    string
	}{
		{
			name:    "UTF-8 passthrough",
			content: []byte("Café"),
			enc:     EncodingUTF8,
			want:    "Café",
		},
		{
			name:    "BOM stripped",
			content: []byte{0xEF, 0xBB, 0xBF, 'H', 'i'},
			enc:     EncodingUTF8,
			want:    "Hi",
		},
		{
			name:    "Windows-1252",
			content: []byte{'C', 'a', 'f', 0xE9},
			enc:     EncodingWindows1252,
			want:    "Café",
		},
		{
			name:    "ISO-8859-1",
			content: []byte{0xFC, 'b', 'e', 'r'},
			enc:     EncodingISO88591,
			want:    "über",
		},
		{
			name:    "declared UTF-8 but actually legacy",
			content: []byte{'C', 'a', 'f', 0xE9},
			enc:     EncodingUTF8,
			want:    "Café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.content, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
