package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"", None},
		{"none", None},
		{"ZSTD", Zstd},
		{"s2", S2},
		{" lz4 ", LZ4},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotEmpty(t, got.String())
	}

	_, err := ParseType("brotli")
	assert.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("HomePlanet::Earth,HomePlanet::Europa,HomePlanet::Mars;"), 64)

	for _, typ := range []Type{None, Zstd, S2, LZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := GetCodec(typ)
			require.NoError(t, err)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)
			if typ != None {
				assert.Less(t, len(compressed), len(payload), "repetitive payload should shrink")
			}

			restored, err := codec.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, restored)
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, typ := range []Type{Zstd, S2, LZ4} {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		out, err := codec.Compress(nil)
		require.NoError(t, err)
		assert.Empty(t, out)

		out, err = codec.Decompress(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
}

func TestGetCodecUnknown(t *testing.T) {
	_, err := GetCodec(Type(42))
	assert.Error(t, err)
}
