package game

import (
	"fmt"
	"math/big"
)

// Outcome is the result of a single Position.Place call.
type Outcome int

const (
	// OutcomeInvalid means the column was full or out of range; no
	// mutation occurred.
	OutcomeInvalid Outcome = iota
	// OutcomeOk means the placement succeeded and the turn advanced.
	OutcomeOk
	// OutcomeWin means the placement completed a K-line for the mover;
	// the turn is NOT advanced.
	OutcomeWin
	// OutcomeDraw means the placement filled the board with no winner;
	// the turn is NOT advanced.
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "Invalid"
	case OutcomeOk:
		return "Ok"
	case OutcomeWin:
		return "Win"
	case OutcomeDraw:
		return "Draw"
	default:
		return "Unknown"
	}
}

// moveRecord is the undo information for a single placement: which column
// received the piece and what the turn was immediately before the
// placement. Restoring turn from this record (rather than recomputing it
// from the current turn) makes undo correct whether or not the placement
// advanced the turn (it does not, on Win or Draw).
type moveRecord struct {
	col       int
	priorTurn int
}

// Position is the mutable game state for one Connect-N board: per-column
// fill heights, whose turn it is, move count, per-player occupancy
// bitsets, and a mixed-radix integer key. Confined mutation through Place
// and Undo; never shared across goroutines (the search uses a single
// Position with make/unmake).
type Position struct {
	cfg Configuration

	heights    []int
	turn       int
	totalMoves int
	occupancy  []bitset // index 0..Players; 0 is unused (empty)
	key        *big.Int

	weights []*big.Int // (Players+1)^idx, precomputed per cell index
	base    *big.Int   // Players+1, shared for digit extraction

	moves []moveRecord
}

// NewPosition constructs an empty Position (key=0, heights all 0, turn=0,
// "uninitialized / pre-first-turn") for the given Configuration.
func NewPosition(cfg Configuration) *Position {
	p := &Position{
		cfg:     cfg,
		heights: make([]int, cfg.Columns),
		turn:    0,
		key:     new(big.Int),
		base:    big.NewInt(int64(cfg.Players + 1)),
		moves:   make([]moveRecord, 0, cfg.Cells()),
	}
	p.occupancy = make([]bitset, cfg.Players+1)
	for i := range p.occupancy {
		p.occupancy[i] = newBitset(cfg.Cells())
	}
	p.weights = make([]*big.Int, cfg.Cells())
	w := big.NewInt(1)
	for i := 0; i < cfg.Cells(); i++ {
		p.weights[i] = new(big.Int).Set(w)
		w = new(big.Int).Mul(w, p.base)
	}
	return p
}

// FromState reconstructs a Position from a (key, heights, turn) triple, as
// used when resuming or scripting a game (spec.md §6). Occupancies and
// total move count are rebuilt by walking the board and extracting digits
// from key. Returns an error if the triple is not self-consistent (e.g.
// the digit sum disagrees with heights' gravity invariant) — this is
// malformed external input, not an internal algorithmic bug.
func FromState(cfg Configuration, key *big.Int, heights []int, turn int) (*Position, error) {
	if len(heights) != cfg.Columns {
		return nil, fmt.Errorf("game: heights has length %d, want %d", len(heights), cfg.Columns)
	}
	p := NewPosition(cfg)
	p.turn = turn
	total := 0
	for c, h := range heights {
		if h < 0 || h > cfg.Rows {
			return nil, fmt.Errorf("game: column %d height %d out of range [0,%d]", c, h, cfg.Rows)
		}
		total += h
	}
	p.totalMoves = total

	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Columns; c++ {
			digit := tileFromKey(key, p.weights, p.base, r*cfg.Columns+c)
			if digit < 0 || digit > cfg.Players {
				return nil, fmt.Errorf("game: key digit at (%d,%d) is %d, out of range [0,%d]", r, c, digit, cfg.Players)
			}
			if digit != 0 {
				p.occupancy[digit].set(r*cfg.Columns + c)
			}
			// Gravity check: a cell is occupied iff it is among the
			// heights[c] lowest rows of its column.
			occupiedByGravity := r >= cfg.Rows-heights[c]
			if (digit != 0) != occupiedByGravity {
				return nil, fmt.Errorf("game: key/heights mismatch at column %d", c)
			}
		}
	}
	p.key = new(big.Int).Set(key)
	return p, nil
}

func tileFromKey(key *big.Int, weights []*big.Int, base *big.Int, idx int) int {
	q := new(big.Int).Div(key, weights[idx])
	d := new(big.Int).Mod(q, base)
	return int(d.Int64())
}

// Clone returns a deep, independent copy of the Position suitable for
// handing to a bot's choose_move (spec.md §4.3's "snapshot/clone").
func (p *Position) Clone() *Position {
	out := &Position{
		cfg:        p.cfg,
		heights:    append([]int(nil), p.heights...),
		turn:       p.turn,
		totalMoves: p.totalMoves,
		key:        new(big.Int).Set(p.key),
		weights:    p.weights, // immutable, safe to share
		base:       p.base,
		moves:      append([]moveRecord(nil), p.moves...),
	}
	out.occupancy = make([]bitset, len(p.occupancy))
	for i, b := range p.occupancy {
		out.occupancy[i] = b.clone()
	}
	return out
}

// Config returns the Configuration this Position was built from.
func (p *Position) Config() Configuration { return p.cfg }

// Turn returns the player to move (1..Players), or 0 pre-first-turn.
func (p *Position) Turn() int { return p.turn }

// TotalMoves returns the number of placements made so far.
func (p *Position) TotalMoves() int { return p.totalMoves }

// Heights returns a copy of the per-column fill heights.
func (p *Position) Heights() []int { return append([]int(nil), p.heights...) }

// Key returns the mixed-radix integer encoding of the board.
func (p *Position) Key() *big.Int { return new(big.Int).Set(p.key) }

// IsFull reports whether every cell is occupied.
func (p *Position) IsFull() bool { return p.totalMoves == p.cfg.Cells() }

// Legal reports whether col is a legal column to place into right now.
func (p *Position) Legal(col int) bool {
	return col >= 0 && col < p.cfg.Columns && p.heights[col] < p.cfg.Rows
}

// Place drops a piece for the current player into column col. See
// spec.md §4.1 for the full contract: invalid columns return
// (OutcomeInvalid, 0) with no mutation; a winning placement returns
// (OutcomeWin, mover) without advancing the turn; a board-filling
// placement with no winner returns (OutcomeDraw, 0), also without
// advancing the turn; otherwise the turn advances and (OutcomeOk, 0) is
// returned.
func (p *Position) Place(col int) (Outcome, int) {
	if !p.Legal(col) {
		return OutcomeInvalid, 0
	}
	mover := p.turn
	r := p.cfg.Rows - p.heights[col] - 1
	idx := r*p.cfg.Columns + col

	p.occupancy[mover].set(idx)
	weighted := new(big.Int).Mul(p.weights[idx], big.NewInt(int64(mover)))
	p.key.Add(p.key, weighted)
	p.heights[col]++
	p.totalMoves++
	p.moves = append(p.moves, moveRecord{col: col, priorTurn: mover})

	if hasWinThrough(p.occupancy[mover], p.cfg.Columns, p.cfg.Rows, p.cfg.Connect, r, col) {
		return OutcomeWin, mover
	}
	if p.totalMoves == p.cfg.Cells() {
		return OutcomeDraw, 0
	}
	p.turn = (p.turn % p.cfg.Players) + 1
	return OutcomeOk, 0
}

// Undo reverses the most recent successful Place call, which must have
// been in column col. Undo is the exact inverse of Place, including for
// a Place that returned Win or Draw: turn is restored to the player who
// had just moved, matching the make/unmake discipline the search relies
// on. Panics (an internal assertion failure, per spec.md §7) if there is
// no move to undo or col does not match the most recent move.
func (p *Position) Undo(col int) {
	if len(p.moves) == 0 {
		panic("game: Undo called with no move to undo")
	}
	last := p.moves[len(p.moves)-1]
	if last.col != col {
		panic(fmt.Sprintf("game: Undo(%d) does not match last move in column %d", col, last.col))
	}
	p.moves = p.moves[:len(p.moves)-1]

	p.heights[col]--
	r := p.cfg.Rows - p.heights[col] - 1
	idx := r*p.cfg.Columns + col
	mover := last.priorTurn

	p.totalMoves--
	p.occupancy[mover].clear(idx)
	weighted := new(big.Int).Mul(p.weights[idx], big.NewInt(int64(mover)))
	p.key.Sub(p.key, weighted)
	p.turn = mover
}

// Tile returns the player id occupying (r, c), or 0 if empty. Derived by
// digit extraction from key, per spec.md §4.1.
func (p *Position) Tile(r, c int) int {
	return tileFromKey(p.key, p.weights, p.base, r*p.cfg.Columns+c)
}

// Board materializes a row-major snapshot of the board for UI use. Row 0
// is the top row.
func (p *Position) Board() [][]int {
	out := make([][]int, p.cfg.Rows)
	for r := 0; r < p.cfg.Rows; r++ {
		out[r] = make([]int, p.cfg.Columns)
		for c := 0; c < p.cfg.Columns; c++ {
			out[r][c] = p.Tile(r, c)
		}
	}
	return out
}
