package simulator

import (
	"crypto/rand"
	"encoding/binary"
)

// randomSeed draws a run-scoped base seed. Falls back to a fixed constant
// if the system entropy source is unavailable.
func randomSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0x9E3779B97F4A7C15
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// splitmix64 is the SplitMix64 finalizer. Feeding it the run seed plus a
// unique trial ordinal yields well-distributed, collision-free per-trial
// seeds without coordination between workers.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
