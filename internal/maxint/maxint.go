// Package maxint is the integer maximization problem: a bitstring read as a
// little-endian binary number, maximized by the same engine as the path
// search.
package maxint

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

const MaxLength = 62

var (
	ErrInvalidLength      = errors.New("chromosome length must be in [1, 62]")
	ErrInvalidProbability = errors.New("mutation probability must be in [0, 1]")
	ErrInvalidBit         = errors.New("invalid bit")
)

// IntegerChromosome holds bits least significant first.
type IntegerChromosome struct {
	bits []byte
}

func NewIntegerChromosome(length int, rng *rand.Rand) (*IntegerChromosome, error) {
	if length < 1 || length > MaxLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	c := &IntegerChromosome{bits: make([]byte, length)}
	for i := range c.bits {
		c.bits[i] = byte(rng.Intn(2))
	}
	return c, nil
}

// FromBits parses a string of '0' and '1', least significant bit first.
func FromBits(s string) (*IntegerChromosome, error) {
	if len(s) < 1 || len(s) > MaxLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, len(s))
	}
	c := &IntegerChromosome{bits: make([]byte, len(s))}
	for i, r := range s {
		switch r {
		case '0':
		case '1':
			c.bits[i] = 1
		default:
			return nil, fmt.Errorf("%w %q at %d", ErrInvalidBit, r, i)
		}
	}
	return c, nil
}

func (c *IntegerChromosome) Len() int {
	return len(c.bits)
}

func (c *IntegerChromosome) Int() int64 {
	var v int64
	for i, b := range c.bits {
		if b == 1 {
			v |= 1 << i
		}
	}
	return v
}

func (c *IntegerChromosome) Value() float64 {
	return float64(c.Int())
}

func (c *IntegerChromosome) Text() string {
	var b strings.Builder
	for _, bit := range c.bits {
		b.WriteByte('0' + bit)
	}
	return b.String()
}

func (c *IntegerChromosome) Clone() *IntegerChromosome {
	return &IntegerChromosome{bits: append([]byte(nil), c.bits...)}
}

// SetGene sets bit i to v.
func (c *IntegerChromosome) SetGene(i, v int) error {
	if i < 0 || i >= len(c.bits) || (v != 0 && v != 1) {
		return fmt.Errorf("%w: bit %d = %d", ErrInvalidBit, i, v)
	}
	c.bits[i] = byte(v)
	return nil
}

// Mutate flips each bit with the given probability.
func (c *IntegerChromosome) Mutate(probability float64, rng *rand.Rand) error {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, probability)
	}
	for i := range c.bits {
		if rng.Float64() < probability {
			c.bits[i] ^= 1
		}
	}
	return nil
}

// Crossover swaps the tails after a random cut.
func (c *IntegerChromosome) Crossover(other *IntegerChromosome, rng *rand.Rand) {
	c.CrossoverAt(rng.Intn(len(c.bits)), other)
}

func (c *IntegerChromosome) CrossoverAt(pos int, other *IntegerChromosome) {
	for i := max(pos, 0); i < len(c.bits) && i < len(other.bits); i++ {
		c.bits[i], other.bits[i] = other.bits[i], c.bits[i]
	}
}

// LocalSearch sets the most significant zero bit.
func (c *IntegerChromosome) LocalSearch() bool {
	for i := len(c.bits) - 1; i >= 0; i-- {
		if c.bits[i] == 0 {
			c.bits[i] = 1
			return true
		}
	}
	return false
}

// Problem maximizes the integer encoded by fixed-length bitstrings.
type Problem struct {
	length int
}

func NewProblem(length int) (*Problem, error) {
	if length < 1 || length > MaxLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	return &Problem{length: length}, nil
}

func (p *Problem) Length() int {
	return p.length
}

func (p *Problem) CreateChromosome(rng *rand.Rand) (*IntegerChromosome, error) {
	return NewIntegerChromosome(p.length, rng)
}

func (p *Problem) Evaluate(c *IntegerChromosome) float64 {
	return c.Value()
}

// Optimum is the largest value a chromosome of the problem's length encodes.
func (p *Problem) Optimum() float64 {
	return float64(int64(1)<<p.length - 1)
}
