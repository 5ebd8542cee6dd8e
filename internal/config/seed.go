package config

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// ResolveSeed returns p with a non-zero RandomSeed. A zero seed is replaced
// by one drawn from the operating system so the run can still be replayed.
func ResolveSeed(p Params) (Params, error) {
	if p.RandomSeed != 0 {
		return p, nil
	}
	var buf [8]byte
	for p.RandomSeed == 0 {
		if _, err := crand.Read(buf[:]); err != nil {
			return p, fmt.Errorf("draw random seed: %w", err)
		}
		p.RandomSeed = int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	}
	return p, nil
}
