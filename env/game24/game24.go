// Package game24 provides the Game of 24 as a set of tools.
//
// The game holds a multiset of numbers. Every arithmetic tool consumes two
// numbers and puts the result back; the game is won when 24 is the only
// number left.
package game24

import (
	"context"
	"errors"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

// Target is the number every game aims for.
const Target = 24

var ErrInvalidNumbers = errors.New("invalid game numbers")

// Game is the shared state of the Game of 24 tools. It is safe for
// concurrent use.
type Game struct {
	mu      sync.Mutex
	initial []float64
	numbers map[float64]int
}

// New creates a game starting from numbers.
func New(numbers ...float64) *Game {
	g := &Game{initial: slices.Clone(numbers)}
	g.reset()
	return g
}

// Parse creates a game from a space separated list such as "1 1 4 6".
func Parse(s string) (*Game, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, goerr.Wrap(ErrInvalidNumbers, "no numbers given")
	}

	numbers := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidNumbers, "not a number", goerr.V("value", f))
		}
		numbers = append(numbers, v)
	}
	return New(numbers...), nil
}

// Reset restores the starting numbers.
func (g *Game) Reset(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
	planlib.LoggerFromContext(ctx).Debug("game24 reset", "numbers", g.string())
	return nil
}

func (g *Game) reset() {
	g.numbers = map[float64]int{}
	for _, n := range g.initial {
		g.numbers[n]++
	}
}

// Numbers returns the remaining numbers in ascending order.
func (g *Game) Numbers() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.list()
}

func (g *Game) list() []float64 {
	var out []float64
	for _, n := range slices.Sorted(maps.Keys(g.numbers)) {
		for range g.numbers[n] {
			out = append(out, n)
		}
	}
	return out
}

func (g *Game) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.string()
}

func (g *Game) string() string {
	list := g.list()
	parts := make([]string, len(list))
	for i, n := range list {
		parts[i] = formatNumber(n)
	}
	return strings.Join(parts, " ")
}

// Solved reports whether 24 is the only number left.
func (g *Game) Solved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	k, ok := g.find(Target)
	return ok && len(g.numbers) == 1 && g.numbers[k] == 1
}

// Terminated reports whether no more operations are possible.
func (g *Game) Terminated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, c := range g.numbers {
		total += c
	}
	return total <= 1
}

// apply replaces a and b with op(a, b). A non-empty message without error
// means the operation was rejected and the state is unchanged.
func (g *Game) apply(a, b float64, op func(a, b float64) (float64, error)) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ka, okA := g.find(a)
	kb, okB := g.find(b)
	if okA && okB && ka == kb && g.numbers[ka] < 2 {
		return formatNumber(a) + " and " + formatNumber(b) + " are not present in currently available numbers.", nil
	}
	if !okA {
		return formatNumber(a) + " is not present in currently available numbers.", nil
	}
	if !okB {
		return formatNumber(b) + " is not present in currently available numbers.", nil
	}

	result, err := op(ka, kb)
	if err != nil {
		return "", err
	}

	g.remove(ka)
	g.remove(kb)
	if k, ok := g.find(result); ok {
		result = k
	}
	g.numbers[result]++
	return g.string(), nil
}

// epsilon absorbs floating point noise, so that 3 - 8/3 matches 1/3.
const epsilon = 1e-9

// find returns the stored number equal to v within epsilon.
func (g *Game) find(v float64) (float64, bool) {
	for k, c := range g.numbers {
		if c > 0 && math.Abs(k-v) < epsilon {
			return k, true
		}
	}
	return 0, false
}

func (g *Game) remove(n float64) {
	g.numbers[n]--
	if g.numbers[n] <= 0 {
		delete(g.numbers, n)
	}
}

func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 9, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
