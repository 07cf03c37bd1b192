package engine

import "slices"

// Solo-style pool tuning, as whole percentages
const (
	InitialPoolPercent     = 40
	PoolExpansionThreshold = 60
	PoolExpansionSize      = 3
)

// InitializePools picks a random starting working set. The active pool holds
// ceil(wordCount*40%) indices (at least one); the remaining pool keeps the rest in theme order.
func InitializePools(wordCount int, seed uint32) (active, remaining []int, newSeed uint32) {
	if wordCount <= 0 {
		return []int{}, []int{}, seed
	}

	size := (wordCount*InitialPoolPercent + 99) / 100
	if size < 1 {
		size = 1
	}
	if size > wordCount {
		size = wordCount
	}

	perm, seed := Shuffle(seed, wordCount)
	active = slices.Clone(perm[:size])
	remaining = slices.Clone(perm[size:])
	slices.Sort(remaining)
	return active, remaining, seed
}

// PickNext draws uniformly from pool. When the pool holds anything other than exclude,
// exclude is never returned, so the same word is not served twice in a row.
// An empty pool yields -1 and consumes no randomness.
func PickNext(pool []int, exclude int, seed uint32) (int, uint32) {
	candidates := pool
	if len(pool) > 1 && slices.Contains(pool, exclude) {
		candidates = make([]int, 0, len(pool)-1)
		for _, idx := range pool {
			if idx != exclude {
				candidates = append(candidates, idx)
			}
		}
	}
	if len(candidates) == 0 {
		return -1, seed
	}
	i, seed := Pick(seed, len(candidates))
	return candidates[i], seed
}

// ShouldExpand reports whether enough of the active pool is mastered to introduce new words
func ShouldExpand(activePool []int, masteredInActive int) bool {
	if len(activePool) == 0 {
		return false
	}
	return masteredInActive*100 >= PoolExpansionThreshold*len(activePool)
}

// ExpandPool moves up to PoolExpansionSize randomly chosen words from remaining into active.
// Inputs are not modified; an empty remaining pool is a no-op that draws nothing.
func ExpandPool(activePool, remainingPool []int, seed uint32) ([]int, []int, uint32) {
	active := slices.Clone(activePool)
	remaining := slices.Clone(remainingPool)
	for n := 0; n < PoolExpansionSize && len(remaining) > 0; n++ {
		var j int
		j, seed = Pick(seed, len(remaining))
		active = append(active, remaining[j])
		remaining = slices.Delete(remaining, j, j+1)
	}
	return active, remaining, seed
}
