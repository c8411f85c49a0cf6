package cli

import (
	"bytes"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/hailam/connectn/internal/store"
)

func newTestREPL() (*REPL, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, rand.New(rand.NewSource(1))), &buf
}

func TestHandleConfigRejectsBadShape(t *testing.T) {
	r, out := newTestREPL()
	r.Run(strings.NewReader("config 1 1 2 4\n"))
	if !strings.Contains(out.String(), "config rejected") {
		t.Errorf("expected rejection message, got %q", out.String())
	}
}

func TestNewRequiresConfigFirst(t *testing.T) {
	r, out := newTestREPL()
	r.Run(strings.NewReader("new\n"))
	if !strings.Contains(out.String(), "no configuration set") {
		t.Errorf("expected 'no configuration set' message, got %q", out.String())
	}
}

func TestBotStagesBindingConsumedByNew(t *testing.T) {
	r, out := newTestREPL()
	script := "config 4 4 2 3\nbot random 2\nnew\nboard\nquit\n"
	r.Run(strings.NewReader(script))
	got := out.String()
	if !strings.Contains(got, "staged \"random\" for player 2") {
		t.Errorf("expected staged-binding confirmation, got %q", got)
	}
	if !strings.Contains(got, "new game started") {
		t.Errorf("expected game to start, got %q", got)
	}
	if r.eng == nil {
		t.Fatal("expected an active engine after 'new'")
	}
	if _, ok := r.botSeats[2]; !ok {
		t.Errorf("expected player 2 to be bound to a bot, botSeats = %v", r.botSeats)
	}
	if len(r.pending) != 0 {
		t.Errorf("expected staged bindings to be consumed, pending = %v", r.pending)
	}
}

func TestBotListsPresetsWithNoArgs(t *testing.T) {
	r, out := newTestREPL()
	r.Run(strings.NewReader("bot\nquit\n"))
	if !strings.Contains(out.String(), "random") {
		t.Errorf("expected the random preset to be listed, got %q", out.String())
	}
}

func TestMoveDrivesGameToCompletion(t *testing.T) {
	r, out := newTestREPL()
	// 4x4, P2, connect 3: player 1 stacks column 0 three times for a
	// vertical win while player 2 plays an unrelated column.
	script := "config 4 4 2 3\nnew\nmove 0\nmove 1\nmove 0\nmove 1\nmove 0\nboard\nquit\n"
	r.Run(strings.NewReader(script))
	got := out.String()
	if !strings.Contains(got, "game over: player 1 wins") {
		t.Errorf("expected player 1 to win, got %q", got)
	}
}

func TestApplyPreferencesSeedsConfigAndBot(t *testing.T) {
	r, _ := newTestREPL()
	prefs := store.DefaultPreferences()
	prefs.Columns, prefs.Rows, prefs.Players, prefs.Connect = 5, 5, 2, 4
	prefs.GameMode = store.ModeHumanVsBot
	prefs.FavoriteBot = "random"
	r.ApplyPreferences(prefs)

	if r.cfg.Columns != 5 || r.cfg.Rows != 5 {
		t.Errorf("expected seeded 5x5 configuration, got %dx%d", r.cfg.Columns, r.cfg.Rows)
	}
	if r.pending[2] != "random" {
		t.Errorf("expected player 2 pre-staged to 'random', pending = %v", r.pending)
	}
}

func TestRecordOutcomePersistsStatsAndPreferences(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "connectn-cli-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	t.Setenv("XDG_DATA_HOME", tmpDir)

	db, err := store.NewStorage()
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	defer db.Close()

	r, _ := newTestREPL()
	r.SetStorage(db)
	// With seed 1 the random bot answers in columns 1 and 3, so player 1
	// completes a vertical three in column 0 on their third move.
	script := "config 4 4 2 3\nbot random 2\nnew\nmove 0\nmove 0\nmove 0\nquit\n"
	r.Run(strings.NewReader(script))

	stats, err := db.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.GamesPlayed != 1 {
		t.Errorf("expected 1 recorded game, got %d", stats.GamesPlayed)
	}
	if stats.Wins != 1 {
		t.Errorf("expected the human seat's win to be recorded, stats = %+v", stats)
	}

	prefs, err := db.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs.FavoriteBot != "random" || prefs.GameMode != store.ModeHumanVsBot {
		t.Errorf("expected saved preferences to reflect the game just played, got %+v", prefs)
	}
}
