package engine

import (
	"fmt"

	"github.com/hailam/connectn/internal/game"
)

// Result is the triple an Evaluator returns for a position with the
// mover to act: a non-negative distance-to-terminal magnitude, the
// expected winner (0 meaning draw-or-unknown), and the column the
// Evaluator chose. Grounded on the teacher's Searcher.Search returning
// (move, score) (internal/engine/search.go), generalized to carry the
// winning player explicitly since this search is P-player, not 2-player
// signed-score negamax.
type Result struct {
	Magnitude int
	Winner    int
	Column    int
}

// Evaluator performs the bounded-depth, P-player-generalized alpha-beta
// (negamax-style) search of spec.md §4.3. It carries a transposition
// cache and the Configuration's initial pruning window; it must not
// leave the Position it searches mutated (make/unmake discipline).
type Evaluator struct {
	cfg   game.Configuration
	cache *TranspositionCache
}

// NewEvaluator builds an Evaluator for cfg, backed by a fresh
// capacity-N transposition cache.
func NewEvaluator(cfg game.Configuration) *Evaluator {
	return &Evaluator{
		cfg:   cfg,
		cache: NewTranspositionCache(cfg.CacheCapacity),
	}
}

// Close releases the Evaluator's cache resources.
func (e *Evaluator) Close() {
	e.cache.Close()
}

// Evaluate runs the search from pos (whose Turn() is the mover) and
// returns the chosen column along with the score triple. pos is restored
// to its original state before Evaluate returns (make/unmake). Panics
// (an internal assertion failure, per spec.md §7) if pos has no legal
// column (a full board); a position in which a player has already won
// is not detected here.
func (e *Evaluator) Evaluate(pos *game.Position) Result {
	if e.cfg.AlphaInit >= e.cfg.BetaInit {
		panic(fmt.Sprintf("engine: evaluator entered with alpha=%d >= beta=%d", e.cfg.AlphaInit, e.cfg.BetaInit))
	}
	if !anyLegal(pos) {
		panic("engine: Evaluate called on a position with no legal column (already terminal)")
	}
	result := e.explore(pos, e.cfg.Depth, e.cfg.AlphaInit, e.cfg.BetaInit)
	if result.Column == -1 {
		panic("engine: evaluator failed to select a legal column for a non-terminal position")
	}
	return result
}

func anyLegal(pos *game.Position) bool {
	for c := 0; c < pos.Config().Columns; c++ {
		if pos.Legal(c) {
			return true
		}
	}
	return false
}

// explore is the memoized wrapper around computeNode, keyed on
// (position key, remaining depth, alpha, beta) — spec.md §4.3's option
// (a); see SPEC_FULL.md §4.3.
func (e *Evaluator) explore(pos *game.Position, depth, alpha, beta int) Result {
	key := cacheKey(pos.Key(), depth, alpha, beta)
	if cached, ok := e.cache.Get(key); ok {
		return cached
	}
	result := e.computeNode(pos, depth, alpha, beta)
	e.cache.Set(key, result)
	return result
}

// computeNode implements the five-step search procedure of spec.md
// §4.3 for a single node. Grounded on the teacher's negamax shape
// (internal/engine/search.go) and on the Connect-4 alpha-beta bot in
// other_examples/30776b34_mehak1404-Connect4__games-bot.go.go for the
// per-column place/evaluate/undo idiom, generalized here to P players
// and to center-out column ordering.
func (e *Evaluator) computeNode(pos *game.Position, depth, alpha, beta int) Result {
	cfg := pos.Config()
	cells := cfg.Cells()
	mover := pos.Turn()

	// Step 1: depth budget.
	if depth == 0 {
		return Result{Magnitude: 0, Winner: 0, Column: -1}
	}

	// Step 2: immediate-terminal scan, left to right. Picking up any
	// immediate win first avoids wasted subtree work and establishes a
	// safe upper bound on the current node.
	for c := 0; c < cfg.Columns; c++ {
		if !pos.Legal(c) {
			continue
		}
		outcome, winner := pos.Place(c)
		switch outcome {
		case game.OutcomeWin:
			total := pos.TotalMoves()
			pos.Undo(c)
			return Result{Magnitude: cells - total, Winner: winner, Column: c}
		case game.OutcomeDraw:
			pos.Undo(c)
			return Result{Magnitude: 0, Winner: 0, Column: c}
		default:
			pos.Undo(c)
		}
	}

	// Step 3: upper-bound pruning. The fastest further win requires at
	// least P more placements after this turn round-trips.
	bound := (cells - pos.TotalMoves()) - cfg.Players
	if bound < beta {
		beta = bound
	}
	if alpha >= beta {
		// spec.md's step-3 wording ("magnitude equal to β") and its
		// Score-semantics paragraph ("a cut-off search returns magnitude
		// 0") disagree; resolved per SPEC_FULL.md §4.3 toward 0, matching
		// magnitude's own definition as a non-negative distance-to-terminal
		// that is only meaningful once Winner is decided, and matching how
		// every Winner==0 child is already treated one level up (s forced
		// to 0 regardless of Magnitude).
		return Result{Magnitude: 0, Winner: 0, Column: -1}
	}

	// Step 4: recursive expansion in center-out order.
	childDepth := depth
	if depth != game.UnboundedDepth {
		childDepth = depth - 1
	}

	bestScore := 0
	bestWinner := 0
	bestCol := -1
	haveBest := false

	for _, c := range centerOutOrder(cfg.Columns) {
		if !pos.Legal(c) {
			continue
		}
		// Step 2 already ruled out an immediate Win/Draw for every
		// legal column at this node, so this placement always
		// returns OutcomeOk.
		pos.Place(c)
		child := e.explore(pos, childDepth, -beta, -alpha)
		pos.Undo(c)

		var s int
		switch {
		case child.Winner == 0:
			s = 0
		case child.Winner == mover:
			s = child.Magnitude
		default:
			s = -child.Magnitude
		}

		if !haveBest || s > bestScore {
			bestScore, bestWinner, bestCol = s, child.Winner, c
			haveBest = true
		}
		if s > alpha {
			alpha = s
		}
		if s >= beta {
			return Result{Magnitude: absInt(s), Winner: child.Winner, Column: c}
		}
	}

	// Step 5.
	return Result{Magnitude: absInt(bestScore), Winner: bestWinner, Column: bestCol}
}

// centerOutOrder returns column indices [0, n) ordered starting from the
// central pair and expanding outward symmetrically: for odd n, the exact
// center first; for even n, n/2-1 then n/2, then widening alternately.
func centerOutOrder(n int) []int {
	order := make([]int, 0, n)
	if n%2 == 1 {
		mid := n / 2
		order = append(order, mid)
		for d := 1; mid-d >= 0 || mid+d < n; d++ {
			if mid-d >= 0 {
				order = append(order, mid-d)
			}
			if mid+d < n {
				order = append(order, mid+d)
			}
		}
		return order
	}
	left, right := n/2-1, n/2
	order = append(order, left, right)
	for d := 1; left-d >= 0 || right+d < n; d++ {
		if left-d >= 0 {
			order = append(order, left-d)
		}
		if right+d < n {
			order = append(order, right+d)
		}
	}
	return order
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
