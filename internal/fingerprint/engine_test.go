package fingerprint

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMD5_Compute_KnownValues(t *testing.T) {
	calc := New()

	tests := []struct {
		name      string
		first     string
		last      string
		prof, eth int64
		gender    int64
		expected  string
	}{
		{"single digit ids", "John", "Doe", 1, 1, 1, "84910c48b9585030807033a20c58bbc4"},
		{"distinct ids", "John", "Doe", 1, 2, 3, "1bf25b04bc57e7a84d5cca410e6b6c28"},
		{"other first name", "Jane", "Doe", 1, 1, 1, "55e9775f7856c9518e3954b04c26397b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Compute(tt.first, tt.last, tt.prof, tt.eth, tt.gender)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMD5_Compute_Deterministic(t *testing.T) {
	calc := New()
	a := calc.Compute("John", "Doe", 10, 20, 30)
	b := calc.Compute("John", "Doe", 10, 20, 30)
	assert.Equal(t, a, b)
}

func TestCompute_ConcatenationIsUnseparated(t *testing.T) {
	// Same concatenated input, same fingerprint: "JohnDoe" + "12" + "3" + "4".
	calc := New()
	assert.Equal(t,
		calc.Compute("John", "Doe", 12, 3, 4),
		calc.Compute("John", "Doe", 1, 23, 4),
	)
	assert.Equal(t,
		calc.Compute("Jo", "hnDoe", 1, 1, 1),
		calc.Compute("John", "Doe", 1, 1, 1),
	)
}

func TestCompute_IdOrderMatters(t *testing.T) {
	for _, calc := range []Calculator{New(), NewMurmur3()} {
		assert.NotEqual(t,
			calc.Compute("John", "Doe", 1, 2, 3),
			calc.Compute("John", "Doe", 3, 2, 1),
		)
	}
}

func TestMurmur3_Compute(t *testing.T) {
	calc := NewMurmur3()
	got := calc.Compute("John", "Doe", 1, 1, 1)

	require.Len(t, got, 32)
	_, err := hex.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, got, calc.Compute("John", "Doe", 1, 1, 1))
	assert.NotEqual(t, New().Compute("John", "Doe", 1, 1, 1), got)
}

func TestForName(t *testing.T) {
	tests := []struct {
		name    string
		want    Calculator
		wantErr bool
	}{
		{"", MD5{}, false},
		{"md5", MD5{}, false},
		{"MD5", MD5{}, false},
		{"murmur3", Murmur3{}, false},
		{"sha1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ForName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
