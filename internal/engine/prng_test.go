package engine

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		seed uint32
		want uint32
	}{
		{0, 12345},
		{1, 1103527590},
		{1 << 31, 12345},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Next(tt.seed), "Next(%d)", tt.seed)
	}
}

func TestPick(t *testing.T) {
	seed := uint32(7)
	for i := 0; i < 1000; i++ {
		var v int
		v, seed = Pick(seed, 6)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 6)
	}

	v, next := Pick(99, 0)
	assert.Equal(t, 0, v)
	assert.Equal(t, uint32(99), next, "an empty range draws nothing")
}

func TestShuffleIsPermutation(t *testing.T) {
	for _, n := range []int{0, 1, 2, 10, 57} {
		perm, _ := Shuffle(12345, n)
		sorted := slices.Clone(perm)
		slices.Sort(sorted)
		for i := range sorted {
			require.Equal(t, i, sorted[i], "Shuffle(%d) is not a permutation: %v", n, perm)
		}
	}
}

func TestShuffleDeterministic(t *testing.T) {
	for seed := uint32(0); seed < 50; seed++ {
		a, sa := Shuffle(seed, 20)
		b, sb := Shuffle(seed, 20)
		assert.Equal(t, a, b)
		assert.Equal(t, sa, sb)
	}
}

func TestShuffleStringsLeavesInput(t *testing.T) {
	in := []string{"a", "b", "c", "d"}
	out, _ := ShuffleStrings(3, in)
	assert.Equal(t, []string{"a", "b", "c", "d"}, in)
	assert.ElementsMatch(t, in, out)
}
