// Package frozenlake is a grid world where the agent walks from S to G over
// frozen cells without falling into holes.
//
// Cells are S (start), F (frozen), H (hole) and G (goal). Positions are
// reported as (x, y) with x the column and y the row, both 0-indexed from
// the top-left corner.
package frozenlake

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

const (
	CellStart  = 'S'
	CellFrozen = 'F'
	CellHole   = 'H'
	CellGoal   = 'G'

	// DefaultMaxSteps is the number of moves after which an episode is truncated.
	DefaultMaxSteps = 100
)

var ErrInvalidMap = errors.New("invalid frozen lake map")

// Map4x4 is the classic 4x4 board.
var Map4x4 = []string{
	"SFFF",
	"FHFH",
	"FFFH",
	"HFFG",
}

// Map8x8 is the classic 8x8 board.
var Map8x8 = []string{
	"SFFFFFFF",
	"FFFFFFFF",
	"FFFHFFFF",
	"FFFFFHFF",
	"FFFHFFFF",
	"FHHFFFHF",
	"FHFFHFHF",
	"FFFHFFFG",
}

// Position is a cell on the board.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Lake is a FrozenLake board with the walker's state. It is safe for
// concurrent use.
type Lake struct {
	mu    sync.Mutex
	board [][]byte
	size  int
	start Position

	slippery bool
	seed     uint64
	maxSteps int

	rng        *rand.Rand
	pos        Position
	steps      int
	terminated bool
}

// Option configures a Lake.
type Option func(*Lake)

// WithSlippery makes moves slip: the walker goes in the chosen direction
// with probability 1/3 and to either perpendicular side otherwise.
func WithSlippery(slippery bool) Option {
	return func(l *Lake) {
		l.slippery = slippery
	}
}

// WithSeed seeds slipping. Reset restores the seed, so a replayed
// trajectory slips the same way every time.
func WithSeed(seed uint64) Option {
	return func(l *Lake) {
		l.seed = seed
	}
}

// WithMaxSteps sets the truncation limit.
func WithMaxSteps(n int) Option {
	return func(l *Lake) {
		l.maxSteps = n
	}
}

// New creates a lake from rows of S, F, H and G. The board must be square
// with exactly one start and at least one goal.
func New(rows []string, opts ...Option) (*Lake, error) {
	l := &Lake{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.load(rows); err != nil {
		return nil, err
	}
	l.reset()
	return l, nil
}

func (l *Lake) load(rows []string) error {
	n := len(rows)
	if n == 0 {
		return goerr.Wrap(ErrInvalidMap, "empty map")
	}

	starts, goals := 0, 0
	l.board = make([][]byte, n)
	for y, row := range rows {
		if len(row) != n {
			return goerr.Wrap(ErrInvalidMap, "map must be square", goerr.V("row", y), goerr.V("width", len(row)), goerr.V("height", n))
		}
		l.board[y] = []byte(row)
		for x, c := range l.board[y] {
			switch c {
			case CellStart:
				starts++
				l.start = Position{X: x, Y: y}
			case CellGoal:
				goals++
			case CellFrozen, CellHole:
			default:
				return goerr.Wrap(ErrInvalidMap, "unknown cell", goerr.V("cell", string(c)), goerr.V("x", x), goerr.V("y", y))
			}
		}
	}

	if starts != 1 {
		return goerr.Wrap(ErrInvalidMap, "map needs exactly one start", goerr.V("starts", starts))
	}
	if goals == 0 {
		return goerr.Wrap(ErrInvalidMap, "map has no goal")
	}
	l.size = n
	return nil
}

func (l *Lake) reset() {
	l.rng = rand.New(rand.NewPCG(l.seed, l.seed))
	l.pos = l.start
	l.steps = 0
	l.terminated = false
}

// Size returns the board width.
func (l *Lake) Size() int { return l.size }

// Position returns the walker's position.
func (l *Lake) Position() Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pos
}

// String renders the board, one row per line.
func (l *Lake) String() string {
	rows := make([]string, len(l.board))
	for i, row := range l.board {
		rows[i] = string(row)
	}
	return strings.Join(rows, "\n")
}

func (l *Lake) cell(p Position) byte {
	return l.board[p.Y][p.X]
}

func (l *Lake) inBounds(p Position) bool {
	return p.X >= 0 && p.X < l.size && p.Y >= 0 && p.Y < l.size
}

// Reset puts the walker back on the start cell.
func (l *Lake) Reset(ctx context.Context) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
	planlib.LoggerFromContext(ctx).Debug("frozenlake reset", "position", l.pos)
	return l.pos, nil
}

// move applies a move in d and returns the step result.
func (l *Lake) move(d direction) *planlib.StepResult {
	if l.terminated || l.steps >= l.maxSteps {
		return &planlib.StepResult{
			Observation: l.pos,
			Terminated:  l.terminated,
			Truncated:   !l.terminated,
			Info:        l.info(),
		}
	}

	if l.slippery {
		switch l.rng.IntN(3) {
		case 1:
			d = d.turnLeft()
		case 2:
			d = d.turnRight()
		}
	}

	next := Position{X: l.pos.X + d.dx(), Y: l.pos.Y + d.dy()}
	if l.inBounds(next) {
		l.pos = next
	}
	l.steps++

	var reward float64
	switch l.cell(l.pos) {
	case CellGoal:
		reward = 1
		l.terminated = true
	case CellHole:
		l.terminated = true
	}

	return &planlib.StepResult{
		Observation: l.pos,
		Reward:      reward,
		Terminated:  l.terminated,
		Truncated:   !l.terminated && l.steps >= l.maxSteps,
		Info:        l.info(),
	}
}

func (l *Lake) info() map[string]any {
	prob := 0.0
	if l.slippery {
		prob = 2.0 / 3.0
	}
	return map[string]any{"prob": prob}
}

// look reports the cell next to the walker in d.
func (l *Lake) look(d direction) string {
	next := Position{X: l.pos.X + d.dx(), Y: l.pos.Y + d.dy()}
	if !l.inBounds(next) {
		return "out of bounds"
	}
	return string(l.cell(next))
}
