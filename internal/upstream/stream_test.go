package upstream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func iterOver(s string) *ChunkIterator {
	return NewChunkIterator(io.NopCloser(strings.NewReader(s)))
}

func TestChunkIteratorParsesDataFrames(t *testing.T) {
	it := iterOver("data: {\"a\":1}\n\ndata: {\"b\":2}\n\n")
	defer it.Close()

	chunk, err := it.Next()
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(chunk))

	chunk, err = it.Next()
	require.NoError(t, err)
	require.JSONEq(t, `{"b":2}`, string(chunk))

	_, err = it.Next()
	require.Equal(t, io.EOF, err)
}

func TestChunkIteratorSkipsCommentsAndBlank(t *testing.T) {
	it := iterOver(": keepalive\n\nevent: message\ndata: {\"x\":1}\n\n")
	defer it.Close()

	chunk, err := it.Next()
	require.NoError(t, err)
	require.JSONEq(t, `{"x":1}`, string(chunk))
}

func TestChunkIteratorDoneSentinelIsEOF(t *testing.T) {
	it := iterOver("data: {\"x\":1}\n\ndata: [DONE]\n\ndata: {\"never\":true}\n\n")
	defer it.Close()

	_, err := it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	require.Equal(t, io.EOF, err)
}

func TestChunkIteratorClosedReturnsEOF(t *testing.T) {
	it := iterOver("data: {\"x\":1}\n\n")
	require.NoError(t, it.Close())
	_, err := it.Next()
	require.Equal(t, io.EOF, err)
	require.NoError(t, it.Close())
}
