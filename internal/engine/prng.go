package engine

// Linear congruential generator constants. The modulus is 2^31, so seeds stay in 31 bits.
const (
	lcgMultiplier uint64 = 1103515245
	lcgIncrement  uint64 = 12345
	lcgModulus    uint64 = 1 << 31
)

// Next advances the seed by one step
func Next(seed uint32) uint32 {
	return uint32((uint64(seed)*lcgMultiplier + lcgIncrement) % lcgModulus)
}

// NormalizeSeed folds an arbitrary 32-bit value into the generator's range
func NormalizeSeed(seed uint32) uint32 {
	return uint32(uint64(seed) % lcgModulus)
}

// Pick returns a value in [0, n) and the advanced seed.
// For n <= 0 nothing is drawn and the seed is returned unchanged.
func Pick(seed uint32, n int) (int, uint32) {
	if n <= 0 {
		return 0, seed
	}
	next := Next(seed)
	return int(next % uint32(n)), next
}

// Chance reports whether a draw falls under probability p
func Chance(seed uint32, p float64) (bool, uint32) {
	next := Next(seed)
	return float64(next)/float64(lcgModulus) < p, next
}

// Shuffle returns a seeded permutation of 0..n-1 (Fisher-Yates)
func Shuffle(seed uint32, n int) ([]int, uint32) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		var j int
		j, seed = Pick(seed, i+1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm, seed
}

// ShuffleStrings returns a seeded permutation of values without touching the input
func ShuffleStrings(seed uint32, values []string) ([]string, uint32) {
	perm, seed := Shuffle(seed, len(values))
	out := make([]string, len(values))
	for i, p := range perm {
		out[i] = values[p]
	}
	return out, seed
}
