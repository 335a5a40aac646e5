package unique

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct{ a, b int }

func hashPair(p pair) uint64 {
	h := MixHash(1469598103934665603, uint64(p.a))
	h = MixHash(h, uint64(p.b))
	return h
}

func eqPair(x, y pair) bool { return x == y }

func TestTable_InternDedups(t *testing.T) {
	tbl := New[pair](4, hashPair, eqPair)

	v1, seq1, inserted1 := tbl.Intern(pair{1, 2})
	assert.True(t, inserted1)

	v2, seq2, inserted2 := tbl.Intern(pair{1, 2})
	assert.False(t, inserted2)
	assert.Equal(t, v1, v2)
	assert.Equal(t, seq1, seq2)

	assert.Equal(t, 1, tbl.Len())
}

func TestTable_InternDistinct(t *testing.T) {
	tbl := New[pair](4, hashPair, eqPair)

	_, seq1, _ := tbl.Intern(pair{1, 2})
	_, seq2, _ := tbl.Intern(pair{3, 4})

	assert.NotEqual(t, seq1, seq2)
	assert.Equal(t, 2, tbl.Len())
}

func TestTable_SequenceMonotonic(t *testing.T) {
	tbl := New[pair](4, hashPair, eqPair)

	_, seq1, _ := tbl.Intern(pair{1, 1})
	_, seq2, _ := tbl.Intern(pair{2, 2})
	_, seq3, _ := tbl.Intern(pair{3, 3})

	assert.Less(t, seq1, seq2)
	assert.Less(t, seq2, seq3)
}

func TestTable_Erase(t *testing.T) {
	tbl := New[pair](4, hashPair, eqPair)
	tbl.Intern(pair{5, 6})

	removed := tbl.Erase(pair{5, 6})
	assert.True(t, removed)
	assert.Equal(t, 0, tbl.Len())

	removedAgain := tbl.Erase(pair{5, 6})
	assert.False(t, removedAgain)
}

func TestTable_GrowsAtLoadFactor(t *testing.T) {
	tbl := New[pair](4, hashPair, eqPair)
	for i := 0; i < 100; i++ {
		tbl.Intern(pair{i, i})
	}

	stats := tbl.Stats()
	require.Equal(t, 100, stats.Size)
	assert.Greater(t, stats.Buckets, 4)
	assert.Less(t, float64(stats.Size)/float64(stats.Buckets), 1.0)
}

func TestTable_Stats(t *testing.T) {
	tbl := New[pair](4, hashPair, eqPair)
	tbl.Intern(pair{1, 1})
	tbl.Intern(pair{1, 1})
	tbl.Intern(pair{2, 2})

	stats := tbl.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, 2, stats.Size)
}

func TestMixHash_Deterministic(t *testing.T) {
	h1 := MixHash(42, 7)
	h2 := MixHash(42, 7)
	assert.Equal(t, h1, h2)

	h3 := MixHash(42, 8)
	assert.NotEqual(t, h1, h3)
}
