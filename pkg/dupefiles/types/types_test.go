package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "zero bytes", input: "0", want: 0},
		{name: "bytes with B suffix", input: "512B", want: 512},
		{name: "kilobytes uppercase", input: "100K", want: 100 * 1024},
		{name: "kilobytes with iB", input: "100KiB", want: 100 * 1024},
		{name: "megabytes lowercase", input: "1m", want: 1024 * 1024},
		{name: "megabytes with iB", input: "4MiB", want: 4 * 1024 * 1024},
		{name: "gigabytes with B", input: "2GB", want: 2 * 1024 * 1024 * 1024},
		{name: "terabytes", input: "1T", want: 1024 * 1024 * 1024 * 1024},
		{name: "surrounding whitespace", input: "  8M  ", want: 8 * 1024 * 1024},
		{name: "decimal values truncated", input: "1.5K", want: 1536},

		{name: "empty string", input: "", wantErr: true},
		{name: "invalid suffix", input: "100X", wantErr: true},
		{name: "negative value", input: "-1M", wantErr: true},
		{name: "suffix only", input: "M", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero", bytes: 0, want: "0 B"},
		{name: "five bytes", bytes: 5, want: "5 B"},
		{name: "just under a kibibyte", bytes: 1023, want: "1023 B"},
		{name: "kibibyte", bytes: 1024, want: "1.0 KiB"},
		{name: "fractional kibibyte", bytes: 1500, want: "1.5 KiB"},
		{name: "large kibibyte count", bytes: 911 * 1024, want: "911.0 KiB"},
		{name: "mebibyte", bytes: 42 * 1024 * 1024, want: "42.0 MiB"},
		{name: "gibibyte", bytes: 137 * 1024 * 1024 * 1024, want: "137.0 GiB"},
		{name: "tebibyte", bytes: 241 * 1024 * 1024 * 1024 * 1024, want: "241.0 TiB"},
		{name: "beyond tebibytes stays in TiB", bytes: 2048 * TiB, want: "2048.0 TiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.bytes))
		})
	}
}

func TestFileEntry_HumanSize(t *testing.T) {
	e := &FileEntry{Size: 2048}
	assert.Equal(t, "2.0 KiB", e.HumanSize())
}

func TestFingerprint(t *testing.T) {
	var fp Fingerprint
	assert.True(t, fp.IsZero())
	assert.Len(t, fp.String(), 64)

	fp[0] = 0xab
	assert.False(t, fp.IsZero())
	assert.Equal(t, "ab", fp.String()[:2])
}

func TestIdentity_String(t *testing.T) {
	assert.Equal(t, "66306:1234", Identity{Dev: 66306, Ino: 1234}.String())
}
