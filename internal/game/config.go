// Package game implements the gravity-stacked generalized Connect-N board:
// Position, Configuration, and the win-detection predicate.
package game

import (
	"errors"
	"fmt"
)

// ErrConfigInvalid is returned by NewConfiguration when a construction-time
// invariant on C/R/P/K or the initial pruning window is violated.
var ErrConfigInvalid = errors.New("game: invalid configuration")

// UnboundedDepth is the sentinel value for Configuration.Depth meaning
// "search to the terminal position or a cache hit, with no depth cutoff".
const UnboundedDepth = -1

// Configuration is an immutable description of a Connect-N variant:
// board shape, win condition, player count, search depth limit, the
// initial alpha-beta pruning window, and transposition cache capacity.
//
// Any change to a Configuration requires rebuilding the Engine (and
// clearing the Evaluator's transposition cache).
type Configuration struct {
	Columns int // C, number of columns, >= 2
	Rows    int // R, number of rows, >= 2
	Players int // P, number of players, >= 2
	Connect int // K, connect length, 2 <= K <= max(C, R)

	Depth int // D, max search depth; UnboundedDepth (-1) means unbounded

	AlphaInit int // initial alpha of the pruning window, AlphaInit < BetaInit
	BetaInit  int // initial beta of the pruning window

	CacheCapacity int // N, LRU transposition cache capacity, >= 0
}

// NewConfiguration validates the fields and returns a frozen Configuration.
func NewConfiguration(columns, rows, players, connect, depth, alphaInit, betaInit, cacheCapacity int) (Configuration, error) {
	cfg := Configuration{
		Columns:       columns,
		Rows:          rows,
		Players:       players,
		Connect:       connect,
		Depth:         depth,
		AlphaInit:     alphaInit,
		BetaInit:      betaInit,
		CacheCapacity: cacheCapacity,
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Validate checks every construction-time constraint from spec.md §3.
func (c Configuration) Validate() error {
	if c.Columns < 2 {
		return fmt.Errorf("%w: columns must be >= 2, got %d", ErrConfigInvalid, c.Columns)
	}
	if c.Rows < 2 {
		return fmt.Errorf("%w: rows must be >= 2, got %d", ErrConfigInvalid, c.Rows)
	}
	if c.Players < 2 {
		return fmt.Errorf("%w: players must be >= 2, got %d", ErrConfigInvalid, c.Players)
	}
	max := c.Columns
	if c.Rows > max {
		max = c.Rows
	}
	if c.Connect < 2 || c.Connect > max {
		return fmt.Errorf("%w: connect must be in [2, %d], got %d", ErrConfigInvalid, max, c.Connect)
	}
	if c.Depth != UnboundedDepth && c.Depth < 0 {
		return fmt.Errorf("%w: depth must be -1 or >= 0, got %d", ErrConfigInvalid, c.Depth)
	}
	if c.AlphaInit >= c.BetaInit {
		return fmt.Errorf("%w: alphaInit (%d) must be < betaInit (%d)", ErrConfigInvalid, c.AlphaInit, c.BetaInit)
	}
	if c.CacheCapacity < 0 {
		return fmt.Errorf("%w: cache capacity must be >= 0, got %d", ErrConfigInvalid, c.CacheCapacity)
	}
	return nil
}

// Cells returns C*R, the total number of board cells.
func (c Configuration) Cells() int {
	return c.Columns * c.Rows
}
