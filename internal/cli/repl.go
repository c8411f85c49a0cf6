// Package cli implements a line-oriented front-end for the Connect-N
// engine: a bufio.Scanner command loop over stdin, grounded on the
// teacher's UCI protocol handler (internal/uci/uci.go in hailam-chessplay),
// generalized from chess's UCI verbs to Connect-N's much smaller verb set.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/connectn/internal/engine"
	"github.com/hailam/connectn/internal/game"
	"github.com/hailam/connectn/internal/store"
)

// REPL drives an Engine from line commands. Unlike the teacher's UCI
// handler, searches run synchronously on the calling goroutine: spec.md §5
// specifies a single-threaded, cooperative core with no cancellation
// primitive, so there is no "stop" command to support.
type REPL struct {
	out     io.Writer
	eng     *engine.Engine
	cfg     game.Configuration
	presets map[string]engine.BotSpec
	pending map[int]string // player id -> bot preset name, staged by "bot", consumed by "new"
	rng     *rand.Rand

	db        *store.Storage // optional; nil disables persistence
	gameStart time.Time
	botSeats  map[int]string // player id -> bot preset name, for the running game
}

// New builds a REPL with no active Engine; "config" must be issued before
// "new", matching Configuration being a frozen record that any game change
// requires rebuilding (spec.md §4.5).
func New(out io.Writer, rng *rand.Rand) *REPL {
	return &REPL{
		out:     out,
		presets: engine.Registry([]int{1, 2, 4, 6, 8, 10, 13}),
		pending: map[int]string{},
		rng:     rng,
	}
}

// SetStorage wires a Storage so finished games are recorded and the
// board shape/bot choice persist across invocations. Nil is a valid
// no-op value, leaving the REPL entirely in-memory.
func (r *REPL) SetStorage(db *store.Storage) {
	r.db = db
}

// ApplyPreferences seeds the current Configuration and a default bot
// binding for player 2 from previously saved preferences, equivalent to
// issuing "config" (and, if GameMode is ModeHumanVsBot and FavoriteBot
// names a known preset, "bot") before the first "new". Front-ends call this once at startup after
// loading preferences; it is a no-op if prefs is nil.
func (r *REPL) ApplyPreferences(prefs *store.UserPreferences) {
	if prefs == nil {
		return
	}
	r.handleConfig([]string{
		strconv.Itoa(prefs.Columns), strconv.Itoa(prefs.Rows),
		strconv.Itoa(prefs.Players), strconv.Itoa(prefs.Connect),
	})
	if prefs.GameMode == store.ModeHumanVsBot {
		if _, ok := r.presets[prefs.FavoriteBot]; ok {
			r.pending[2] = prefs.FavoriteBot
		}
	}
}

// Run reads commands from in until EOF or "quit".
func (r *REPL) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "config":
			r.handleConfig(args)
		case "new":
			r.handleNew(args)
		case "move":
			r.handleMove(args)
		case "bot":
			r.handleBot(args)
		case "board":
			r.printBoard()
		case "quit":
			return
		default:
			fmt.Fprintf(r.out, "unknown command %q\n", cmd)
		}
	}
}

// handleConfig parses: config <columns> <rows> <players> <connect> [depth]
func (r *REPL) handleConfig(args []string) {
	if len(args) < 4 {
		fmt.Fprintln(r.out, "usage: config <columns> <rows> <players> <connect> [depth]")
		return
	}
	columns, err1 := strconv.Atoi(args[0])
	rows, err2 := strconv.Atoi(args[1])
	players, err3 := strconv.Atoi(args[2])
	connect, err4 := strconv.Atoi(args[3])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		fmt.Fprintln(r.out, "config: all of columns/rows/players/connect must be integers")
		return
	}
	depth := game.UnboundedDepth
	if len(args) >= 5 {
		d, err := strconv.Atoi(args[4])
		if err != nil {
			fmt.Fprintln(r.out, "config: depth must be an integer or omitted")
			return
		}
		depth = d
	}

	cells := columns * rows
	cfg, err := game.NewConfiguration(columns, rows, players, connect, depth, -cells-1, cells+1, 200000)
	if err != nil {
		fmt.Fprintf(r.out, "config rejected: %v\n", err)
		return
	}
	r.cfg = cfg
	fmt.Fprintf(r.out, "configured %dx%d, %d players, connect %d\n", columns, rows, players, connect)
}

// handleNew starts a fresh game against the current Configuration, binding
// any bots staged by prior "bot <name> <player>" commands to their seats;
// unmentioned seats are human-controlled. The staged bindings are consumed
// (cleared) so a later "new" starts all-human unless "bot" is reissued.
func (r *REPL) handleNew(args []string) {
	if r.cfg.Columns == 0 {
		fmt.Fprintln(r.out, "new: no configuration set, issue 'config' first")
		return
	}
	bots := map[int]*engine.Bot{}
	botSeats := map[int]string{}
	for player, name := range r.pending {
		spec, ok := r.presets[name]
		if !ok {
			fmt.Fprintf(r.out, "new: unknown bot preset %q staged for player %d\n", name, player)
			return
		}
		bots[player] = engine.NewBot(spec, r.cfg, r.rng)
		botSeats[player] = name
	}
	r.pending = map[int]string{}

	eng, err := engine.New(r.cfg, bots, nil)
	if err != nil {
		fmt.Fprintf(r.out, "new: %v\n", err)
		return
	}
	eng.Notify.OnTilePlaced = func(rr, c, player int) {
		fmt.Fprintf(r.out, "placed: player %d at (%d,%d)\n", player, rr, c)
	}
	eng.Notify.OnGameOver = func(outcome engine.GameOutcome) {
		if outcome.Draw {
			fmt.Fprintln(r.out, "game over: draw")
		} else {
			fmt.Fprintf(r.out, "game over: player %d wins\n", outcome.Winner)
		}
		r.recordOutcome(outcome)
	}
	r.eng = eng
	r.botSeats = botSeats
	r.gameStart = time.Now()
	fmt.Fprintln(r.out, "new game started")
}

// recordOutcome persists a finished game's result and the preferences
// that produced it, if a Storage was wired via SetStorage. A game is
// scored "won" from the human side when the winner is not a bot seat and
// "lost" when it is. With more than one human seat (no bot at all) every
// decisive game is therefore recorded as a win; the stats record does
// not store the game mode, which is saved only in the preferences.
func (r *REPL) recordOutcome(outcome engine.GameOutcome) {
	if r.db == nil {
		return
	}
	mode := store.ModeHumanVsHuman
	botPreset := ""
	switch {
	case len(r.botSeats) == 0:
		mode = store.ModeHumanVsHuman
	case len(r.botSeats) >= r.cfg.Players:
		mode = store.ModeBotVsBot
	default:
		mode = store.ModeHumanVsBot
		for _, name := range r.botSeats {
			botPreset = name
			break
		}
	}

	result := store.GameResult{
		Draw:      outcome.Draw,
		BotPreset: botPreset,
		ShapeKey:  fmt.Sprintf("%dx%d P%d K%d", r.cfg.Columns, r.cfg.Rows, r.cfg.Players, r.cfg.Connect),
		Duration:  time.Since(r.gameStart),
	}
	if !outcome.Draw {
		_, winnerIsBot := r.botSeats[outcome.Winner]
		result.Won = !winnerIsBot
	}
	if err := r.db.RecordGame(result); err != nil {
		fmt.Fprintf(r.out, "warning: failed to record game stats: %v\n", err)
	}

	prefs := store.DefaultPreferences()
	prefs.Columns, prefs.Rows, prefs.Players, prefs.Connect = r.cfg.Columns, r.cfg.Rows, r.cfg.Players, r.cfg.Connect
	prefs.GameMode = mode
	if botPreset != "" {
		prefs.FavoriteBot = botPreset
	}
	if err := r.db.SavePreferences(prefs); err != nil {
		fmt.Fprintf(r.out, "warning: failed to save preferences: %v\n", err)
	}
}

// handleMove parses: move <col>
func (r *REPL) handleMove(args []string) {
	if r.eng == nil {
		fmt.Fprintln(r.out, "move: no active game, issue 'new' first")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(r.out, "usage: move <col>")
		return
	}
	col, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(r.out, "move: col must be an integer")
		return
	}
	if err := r.eng.Apply(col); err != nil {
		fmt.Fprintf(r.out, "move rejected: %v\n", err)
	}
}

// handleBot with no arguments lists registered bot presets; with
// "<name> <player>" it stages a binding applied by the next "new".
func (r *REPL) handleBot(args []string) {
	if len(args) == 0 {
		for name := range r.presets {
			fmt.Fprintln(r.out, name)
		}
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(r.out, "usage: bot <name> <player>")
		return
	}
	name, playerStr := args[0], args[1]
	if _, ok := r.presets[name]; !ok {
		fmt.Fprintf(r.out, "bot: unknown preset %q\n", name)
		return
	}
	player, err := strconv.Atoi(playerStr)
	if err != nil {
		fmt.Fprintf(r.out, "bot: invalid player id %q\n", playerStr)
		return
	}
	r.pending[player] = name
	fmt.Fprintf(r.out, "staged %q for player %d (applied on next 'new')\n", name, player)
}

func (r *REPL) printBoard() {
	if r.eng == nil {
		fmt.Fprintln(r.out, "board: no active game")
		return
	}
	cfg := r.cfg
	for row := 0; row < cfg.Rows; row++ {
		var sb strings.Builder
		for col := 0; col < cfg.Columns; col++ {
			tile := r.eng.Tile(row, col)
			if tile == 0 {
				sb.WriteByte('.')
			} else {
				sb.WriteString(strconv.Itoa(tile))
			}
			sb.WriteByte(' ')
		}
		fmt.Fprintln(r.out, sb.String())
	}
	fmt.Fprintf(r.out, "turn: %d, state: %v\n", r.eng.CurrentTurn(), r.eng.State())
}
