package engine

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/hailam/connectn/internal/game"
)

// ErrInvalidMove is returned by Apply when the requested column is full
// or out of range; it does not alter Engine state.
var ErrInvalidMove = errors.New("engine: invalid move")

// ErrTerminal is returned by Apply when a move is attempted after the
// game is already over; it does not alter Engine state.
var ErrTerminal = errors.New("engine: game is already over")

// State is one of the three states of spec.md §4.4's state machine.
type State int

const (
	AwaitHuman State = iota
	AwaitBot
	GameOver
)

func (s State) String() string {
	switch s {
	case AwaitHuman:
		return "AwaitHuman"
	case AwaitBot:
		return "AwaitBot"
	case GameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// GameOutcome reports the terminal result of a finished game. Decided is
// false while the game is ongoing.
type GameOutcome struct {
	Decided bool
	Draw    bool
	Winner  int
}

// Notifications are the callbacks the Engine invokes on its front-end,
// per spec.md §6. Modeled as plain function fields rather than an
// observer interface, matching the teacher's Engine.OnInfo
// func(SearchInfo) callback field (internal/engine/engine.go) and design
// note 9's "no need for deep hierarchies."
type Notifications struct {
	OnTurnChanged func(player int, isBot bool)
	OnTilePlaced  func(r, c, player int)
	OnGameOver    func(outcome GameOutcome)
}

// StateTriple is the (key, heights, turn) resumable/scriptable position
// state of spec.md §6.
type StateTriple struct {
	Key     *big.Int
	Heights []int
	Turn    int
}

// Engine is the façade exposed to front-ends: construct from
// configuration or a supplied starting state, apply a move, ask a bot to
// choose a move, query the board. Grounded on the teacher's Engine
// struct and OnInfo callback (internal/engine/engine.go), generalized
// from a single chess-playing engine to the P-player turn/state machine
// of spec.md §4.4.
type Engine struct {
	cfg   game.Configuration
	pos   *game.Position
	bots  map[int]*Bot // player id -> bot; absent/nil means human
	state State

	outcome GameOutcome

	// Scheduler defers a bot's choose_and_apply to the host event loop,
	// per spec.md §5. Defaults to direct synchronous invocation (design
	// note 9: "On a non-UI driver, the Engine may simply call the bot
	// synchronously").
	Scheduler func(func())

	Notify Notifications

	inChooseAndApply bool
}

// New constructs an Engine. bots maps player id -> Bot for bot-controlled
// players; players absent from bots are human-controlled. If initial is
// non-nil, the Position is reconstructed from that (key, heights, turn)
// triple; otherwise an empty Position is created with turn=1.
func New(cfg game.Configuration, bots map[int]*Bot, initial *StateTriple) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var pos *game.Position
	if initial != nil {
		p, err := game.FromState(cfg, initial.Key, initial.Heights, initial.Turn)
		if err != nil {
			return nil, fmt.Errorf("engine: invalid initial state: %w", err)
		}
		pos = p
	} else {
		empty := game.NewPosition(cfg)
		// NewPosition leaves turn=0 ("pre-first-turn"); a fresh game
		// starts with player 1 to move.
		p, err := game.FromState(cfg, empty.Key(), empty.Heights(), 1)
		if err != nil {
			return nil, fmt.Errorf("engine: failed to initialize empty position: %w", err)
		}
		pos = p
	}

	e := &Engine{
		cfg:       cfg,
		pos:       pos,
		bots:      bots,
		Scheduler: func(f func()) { f() },
	}
	e.refreshState()
	return e, nil
}

// Position returns the Engine's current Position (not a clone); callers
// must not mutate it directly.
func (e *Engine) Position() *game.Position { return e.pos }

// State returns the current state-machine state.
func (e *Engine) State() State { return e.state }

// CurrentTurn returns the player to move.
func (e *Engine) CurrentTurn() int { return e.pos.Turn() }

// Heights returns the per-column fill heights.
func (e *Engine) Heights() []int { return e.pos.Heights() }

// Tile returns the player occupying (r, c), or 0 if empty.
func (e *Engine) Tile(r, c int) int { return e.pos.Tile(r, c) }

// Outcome returns the terminal result, if any.
func (e *Engine) Outcome() GameOutcome { return e.outcome }

// Apply forwards col to the Position. On a successful placement it
// advances turn notification, handles Win/Draw by emitting game-over,
// and — if the next mover is a bot — schedules choose_and_apply via
// Scheduler.
func (e *Engine) Apply(col int) error {
	if e.state == GameOver {
		return ErrTerminal
	}

	mover := e.pos.Turn()
	outcome, winner := e.pos.Place(col)
	switch outcome {
	case game.OutcomeInvalid:
		return ErrInvalidMove
	case game.OutcomeWin:
		e.notifyTilePlaced(col, mover)
		e.finish(GameOutcome{Decided: true, Winner: winner})
		return nil
	case game.OutcomeDraw:
		e.notifyTilePlaced(col, mover)
		e.finish(GameOutcome{Decided: true, Draw: true})
		return nil
	default: // OutcomeOk
		e.notifyTilePlaced(col, mover)
	}

	e.refreshState()
	if e.state == AwaitBot {
		e.Scheduler(func() { e.ChooseAndApply() })
	}
	return nil
}

func (e *Engine) notifyTilePlaced(col, player int) {
	if e.Notify.OnTilePlaced != nil {
		r := e.cfg.Rows - e.pos.Heights()[col]
		e.Notify.OnTilePlaced(r, col, player)
	}
}

func (e *Engine) finish(outcome GameOutcome) {
	e.outcome = outcome
	e.state = GameOver
	if e.Notify.OnGameOver != nil {
		e.Notify.OnGameOver(outcome)
	}
}

// refreshState sets state to AwaitBot or AwaitHuman based on whose turn
// it now is, and fires OnTurnChanged.
func (e *Engine) refreshState() {
	mover := e.pos.Turn()
	_, isBot := e.bots[mover]
	if isBot {
		e.state = AwaitBot
	} else {
		e.state = AwaitHuman
	}
	if e.Notify.OnTurnChanged != nil {
		e.Notify.OnTurnChanged(mover, isBot)
	}
}

// ChooseAndApply invokes the bound bot's choose_move on a clone of the
// current Position, then applies the returned column. Must not be
// entered re-entrantly (spec.md §4.4); a re-entrant call is a no-op.
func (e *Engine) ChooseAndApply() error {
	if e.inChooseAndApply {
		return nil
	}
	e.inChooseAndApply = true
	defer func() { e.inChooseAndApply = false }()

	if e.state != AwaitBot {
		return nil
	}
	bot, ok := e.bots[e.pos.Turn()]
	if !ok {
		return fmt.Errorf("engine: no bot bound for player %d", e.pos.Turn())
	}

	col, err := bot.ChooseMove(e.pos.Clone())
	if err != nil {
		// A bot returning an illegal column is a fatal program bug
		// (spec.md §7), not a recoverable user-facing error.
		panic(fmt.Sprintf("engine: %v (bot %q chose column %d)", err, bot.Name(), col))
	}
	return e.Apply(col)
}
