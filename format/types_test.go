package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEncodingWidth(t *testing.T) {
	w, err := ParseEncodingWidth(0x29)
	require.NoError(t, err)
	require.Equal(t, FourByte, w)
	require.Equal(t, 4, w.VarSize())
	require.True(t, w.DeltaTimestamps())

	w, err = ParseEncodingWidth(0x30)
	require.NoError(t, err)
	require.Equal(t, EightByte, w)
	require.Equal(t, 8, w.VarSize())
	require.False(t, w.DeltaTimestamps())

	_, err = ParseEncodingWidth(0x00)
	require.Error(t, err)
}

func TestTagIsLogEvent(t *testing.T) {
	for _, tag := range []Tag{TagTimestampVal, TagTimestampDeltaByte, TagTimestampDeltaShort, TagTimestampDeltaInt, TagTimestampDeltaLong} {
		require.True(t, tag.IsLogEvent(), tag.String())
	}
	for _, tag := range []Tag{TagEndOfStream, TagUtcOffsetChange, TagSchemaNodeInsertion} {
		require.False(t, tag.IsLogEvent(), tag.String())
	}
	require.Equal(t, "Tag(0x7f)", Tag(0x7f).String())
}

func TestIsPlaceholder(t *testing.T) {
	require.True(t, IsPlaceholder(PlaceholderInteger))
	require.True(t, IsPlaceholder(PlaceholderDictionary))
	require.True(t, IsPlaceholder(PlaceholderFloat))
	require.False(t, IsPlaceholder(PlaceholderEscape))
	require.False(t, IsPlaceholder('a'))
}

func TestNodeType(t *testing.T) {
	require.True(t, NodeInt.Valid())
	require.True(t, NodeObj.Valid())
	require.False(t, NodeType(6).Valid())
	require.Equal(t, "Str", NodeStr.String())
	require.Equal(t, "NodeType(9)", NodeType(9).String())
}
