package utils

import "hash/fnv"

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// SeedFromString maps an arbitrary token to a non-zero int64 seed.
func SeedFromString(s string) int64 {
	seed := int64(HashStringToUint64(s) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
