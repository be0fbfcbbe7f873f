package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicCounter(t *testing.T) {
	c := HeuristicCounter{}
	assert.Equal(t, 0, c.CountTokens(""))
	assert.Equal(t, 1, c.CountTokens("abc"))
	assert.Equal(t, 1, c.CountTokens("abcd"))
	assert.Equal(t, 2, c.CountTokens("abcde"))
	assert.Equal(t, 1, c.CountTokens("中文"))
}

func TestNewTokenCounter(t *testing.T) {
	c, err := NewTokenCounter("")
	require.NoError(t, err)
	assert.IsType(t, HeuristicCounter{}, c)

	c, err = NewTokenCounter("cl100k_base")
	require.NoError(t, err)
	assert.Equal(t, 2, c.CountTokens("hello world"))
	assert.Equal(t, 0, c.CountTokens(""))

	_, err = NewTokenCounter("no_such_encoding")
	require.Error(t, err)
}
