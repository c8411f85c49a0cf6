package engine

import (
	"errors"
	"math/rand"
	"strconv"

	"github.com/hailam/connectn/internal/game"
)

// ErrBotContractViolated is a fatal error (spec.md §7): a bot returned a
// column that is not legal in the current position.
var ErrBotContractViolated = errors.New("engine: bot contract violated")

// Kind is the family a bot preset belongs to: random, strong or weak.
type Kind int

const (
	KindRandom Kind = iota
	KindStrong
	KindWeak
)

// BotSpec is the tagged-variant description of one bot preset: a name, a
// kind and a search depth, per design note 9 ("Dynamic dispatch over bots
// becomes a tagged variant"). The initial window follows from Kind and
// the cache capacity from the board Configuration, both applied by
// NewBot. A Bot built from a "random" spec carries no state beyond a
// PRNG; one built from a "strong"/"weak" spec carries an Evaluator.
type BotSpec struct {
	Name  string
	Kind  Kind
	Depth int // ignored for KindRandom
}

// Registry returns the five named bot presets of spec.md §6: "random",
// "strong d" (for the depths given), "strong unlimited", "weak d", "weak
// unlimited". This is process-wide immutable configuration mapping names
// to parameter tuples, not to shared bot instances — each Bot built from
// a spec gets its own Evaluator and cache, per design note 9.
func Registry(strongWeakDepths []int) map[string]BotSpec {
	reg := map[string]BotSpec{
		"random": {Name: "random", Kind: KindRandom},
	}
	for _, d := range strongWeakDepths {
		reg[botName("strong", d)] = BotSpec{Name: botName("strong", d), Kind: KindStrong, Depth: d}
		reg[botName("weak", d)] = BotSpec{Name: botName("weak", d), Kind: KindWeak, Depth: d}
	}
	reg["strong unlimited"] = BotSpec{Name: "strong unlimited", Kind: KindStrong, Depth: game.UnboundedDepth}
	reg["weak unlimited"] = BotSpec{Name: "weak unlimited", Kind: KindWeak, Depth: game.UnboundedDepth}
	return reg
}

func botName(prefix string, depth int) string {
	if depth == game.UnboundedDepth {
		return prefix + " unlimited"
	}
	return prefix + " " + strconv.Itoa(depth)
}

// Bot is the runtime tagged variant: one concrete bot instance able to
// choose a move. Built from a BotSpec plus the board's Configuration
// (columns/rows/players/connect/cache capacity carry over; alpha/beta
// window is overridden by the spec's Kind).
type Bot struct {
	spec      BotSpec
	evaluator *Evaluator // nil for KindRandom
	rng       *rand.Rand // non-nil only for KindRandom
}

// NewBot constructs a Bot from spec against boardCfg. The depth and
// alpha/beta window of boardCfg are overridden by spec: strong bots get
// the full (−∞, +∞)-style window (encoded here as a wide integer
// range sufficient to never bind before C·R), weak bots get (−1, +1).
func NewBot(spec BotSpec, boardCfg game.Configuration, rng *rand.Rand) *Bot {
	if spec.Kind == KindRandom {
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		return &Bot{spec: spec, rng: rng}
	}

	alpha, beta := -boardCfg.Cells()-1, boardCfg.Cells()+1
	if spec.Kind == KindWeak {
		alpha, beta = -1, 1
	}
	cfg, err := game.NewConfiguration(
		boardCfg.Columns, boardCfg.Rows, boardCfg.Players, boardCfg.Connect,
		spec.Depth, alpha, beta, boardCfg.CacheCapacity,
	)
	if err != nil {
		panic("engine: bot preset produced an invalid configuration: " + err.Error())
	}
	return &Bot{spec: spec, evaluator: NewEvaluator(cfg)}
}

// Name returns the bot preset's registry name.
func (b *Bot) Name() string { return b.spec.Name }

// Close releases any resources (transposition cache) held by the bot.
func (b *Bot) Close() {
	if b.evaluator != nil {
		b.evaluator.Close()
	}
}

// ChooseMove selects a column for pos (whose Turn() is this bot's
// player). For search bots, pos should be a clone the Engine is not
// using concurrently; ChooseMove leaves pos bitwise unchanged either way
// (make/unmake discipline).
func (b *Bot) ChooseMove(pos *game.Position) (int, error) {
	if b.rng != nil {
		return b.chooseRandom(pos)
	}
	result := b.evaluator.Evaluate(pos)
	if !pos.Legal(result.Column) {
		return 0, ErrBotContractViolated
	}
	return result.Column, nil
}

func (b *Bot) chooseRandom(pos *game.Position) (int, error) {
	var legal []int
	for c := 0; c < pos.Config().Columns; c++ {
		if pos.Legal(c) {
			legal = append(legal, c)
		}
	}
	if len(legal) == 0 {
		return 0, errors.New("engine: no legal column available")
	}
	return legal[b.rng.Intn(len(legal))], nil
}
