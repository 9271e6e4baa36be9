package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	var q Queue[int]
	assert.True(t, q.Empty())

	q.Push(1)
	assert.False(t, q.Empty())
	assert.Equal(t, 1, q.Pop())
	assert.True(t, q.Empty())

	q.Push(2)
	q.Push(3)
	assert.Equal(t, 2, q.Len())

	assert.Equal(t, 2, q.Pop())
	assert.Equal(t, 3, q.Pop())
	assert.True(t, q.Empty())

	assert.PanicsWithValue(t, ErrEmpty, func() { q.Pop() })
}

func TestQueueCompaction(t *testing.T) {
	var q Queue[int]
	for i := 0; i < 1000; i++ {
		q.Push(i)
	}
	for i := 0; i < 600; i++ {
		require.Equal(t, i, q.Pop())
	}
	for i := 1000; i < 1500; i++ {
		q.Push(i)
	}

	assert.Equal(t, 900, q.Len())
	for i := 600; i < 1500; i++ {
		require.Equal(t, i, q.Pop())
	}
	assert.True(t, q.Empty())
}

func TestStack(t *testing.T) {
	var s Stack[string]
	assert.True(t, s.Empty())

	s.Push("a")
	s.Push("b")
	s.Push("c")
	assert.Equal(t, 3, s.Len())

	assert.Equal(t, "c", s.Pop())
	assert.Equal(t, "b", s.Pop())
	s.Push("d")
	assert.Equal(t, "d", s.Pop())
	assert.Equal(t, "a", s.Pop())
	assert.True(t, s.Empty())

	assert.PanicsWithValue(t, ErrEmpty, func() { s.Pop() })
}
