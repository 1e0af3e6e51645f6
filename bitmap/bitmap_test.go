package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidAllClear(t *testing.T) {
	b := NewValid(70)
	for i := 0; i < 70; i++ {
		assert.False(t, b.IsNull(i))
	}
}

func TestNewNullAllSet(t *testing.T) {
	b := NewNull(70)
	for i := 0; i < 70; i++ {
		assert.True(t, b.IsNull(i))
	}
}

func TestEdgeAlignedLengthDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		b := NewValid(64)
		assert.Equal(t, 64, b.Len())
		b2 := NewNull(128)
		assert.Equal(t, 128, b2.Len())
	})
}

func TestPushAndCountNull(t *testing.T) {
	b := NewValid(0)
	for i := 0; i < 70; i++ {
		b.Push(i%3 == 0)
	}
	count := 0
	for i := 0; i < 70; i++ {
		if i%3 == 0 {
			count++
		}
	}
	assert.Equal(t, count, b.CountNull())
}

func TestSetValidClearsBit(t *testing.T) {
	b := NewNull(10)
	b.SetValid(5)
	assert.False(t, b.IsNull(5))
	assert.True(t, b.IsNull(4))
}

func TestGatherPropagatesNulls(t *testing.T) {
	b := NewValid(5)
	b.SetNull(2)
	b.SetNull(4)
	g := b.Gather([]int{4, 3, 2, 0})
	assert.True(t, g.IsNull(0))
	assert.False(t, g.IsNull(1))
	assert.True(t, g.IsNull(2))
	assert.False(t, g.IsNull(3))
}

func TestRemoveShiftsDown(t *testing.T) {
	b := NewValid(4)
	b.SetNull(1)
	b.Remove(0)
	assert.Equal(t, 3, b.Len())
	assert.True(t, b.IsNull(0))
	assert.False(t, b.IsNull(1))
}

func TestWordsTailMaskedBeyondLength(t *testing.T) {
	b := NewNull(70)
	words := b.Words()
	require.Len(t, words, 2)
	// bits [70, 128) of the final word must be clear.
	for i := 6; i < 64; i++ {
		assert.Equal(t, uint64(0), words[1]&(uint64(1)<<uint(i)))
	}
}
