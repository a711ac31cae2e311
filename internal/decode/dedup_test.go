package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextRingEvictsOldestBeyondCapacity(t *testing.T) {
	r := newTextRing(2)
	r.push("a")
	r.push("b")
	r.push("c")
	assert.Equal(t, []string{"b", "c"}, r.all())
}

func TestHashRingContainsRecentAndEvictsOldest(t *testing.T) {
	r := newHashRing(2)
	r.push(1)
	r.push(2)
	assert.True(t, r.contains(1))
	assert.True(t, r.contains(2))

	r.push(3)
	assert.False(t, r.contains(1))
	assert.True(t, r.contains(2))
	assert.True(t, r.contains(3))
}
