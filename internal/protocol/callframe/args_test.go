package callframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreframe/callwire/internal/protocol/wire"
)

func TestArgs_WriteArgsInto_ReadArgsFrom_RoundTrip(t *testing.T) {
	args := [][]byte{[]byte("one"), []byte("two"), []byte("")}

	buf, fragment, err := WriteArgsInto(nil, args, false)
	require.NoError(t, err)
	assert.False(t, fragment)
	assert.Equal(t, ArgsLen(args), len(buf))

	got, err := ReadArgsFrom(wire.NewCursor(buf))
	require.NoError(t, err)
	assert.Equal(t, args, got)
}

func TestArgs_EmptyArgListRoundTrips(t *testing.T) {
	buf, _, err := WriteArgsInto(nil, nil, false)
	require.NoError(t, err)
	assert.Empty(t, buf)

	got, err := ReadArgsFrom(wire.NewCursor(buf))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestArgs_MoreFollowPropagatesAsFragmentBit(t *testing.T) {
	_, fragment, err := WriteArgsInto(nil, [][]byte{[]byte("partial")}, true)
	require.NoError(t, err)
	assert.True(t, fragment)
}

func TestArgs_LastArgMayBeEmpty(t *testing.T) {
	args := [][]byte{[]byte("x"), []byte("")}
	buf, _, err := WriteArgsInto(nil, args, false)
	require.NoError(t, err)

	got, err := ReadArgsFrom(wire.NewCursor(buf))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []byte(""), got[1])
}
