package graphgen

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"galp/internal/graph"
)

// Type selects a graph source.
type Type int

const (
	TypeRecursive Type = iota
	TypeRejection
	TypeExample
	TypeRingTricky
	TypeRingAscending
	TypeKite
	TypeAntiLoop
)

var typeNames = map[Type]string{
	TypeRecursive:     "recursive",
	TypeRejection:     "rejection",
	TypeExample:       "example",
	TypeRingTricky:    "ring_tricky",
	TypeRingAscending: "ring_ascending",
	TypeKite:          "kite",
	TypeAntiLoop:      "anti_loop",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseType accepts either the numeric code or the name.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if code, err := strconv.Atoi(s); err == nil {
		t := Type(code)
		if !t.Valid() {
			return 0, fmt.Errorf("%d: %w", code, ErrUnknownType)
		}
		return t, nil
	}
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownType)
}

// ByType builds a graph of n nodes. p and rng are used only by the random
// types.
func ByType(t Type, n int, p float64, rng *rand.Rand, opts ...Option) (*graph.Graph, error) {
	var (
		edges []graph.Edge
		err   error
	)
	switch t {
	case TypeRecursive:
		return Recursive(n, p, rng, opts...)
	case TypeRejection:
		return Rejection(n, p, rng, opts...)
	case TypeExample:
		edges, err = ExampleEdges(n)
	case TypeRingTricky:
		edges, err = RingTrickyEdges(n)
	case TypeRingAscending:
		edges, err = RingAscendingEdges(n)
	case TypeKite:
		edges, err = KiteEdges(n)
	case TypeAntiLoop:
		edges, err = AntiLoopEdges(n)
	default:
		return nil, fmt.Errorf("%d: %w", int(t), ErrUnknownType)
	}
	if err != nil {
		return nil, err
	}
	return graph.New(edges, n)
}
