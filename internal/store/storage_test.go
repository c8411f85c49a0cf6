package store

import (
	"os"
	"testing"
)

func TestDefaultPreferences(t *testing.T) {
	prefs := DefaultPreferences()
	if prefs.Username != "Player" {
		t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
	}
	if prefs.Columns != 7 || prefs.Rows != 6 || prefs.Players != 2 || prefs.Connect != 4 {
		t.Errorf("expected classic 7x6 P2 K4 defaults, got %dx%d P%d K%d",
			prefs.Columns, prefs.Rows, prefs.Players, prefs.Connect)
	}
	if !prefs.SoundEnabled {
		t.Errorf("Expected sound enabled by default")
	}
}

func TestNewGameStats(t *testing.T) {
	stats := NewGameStats()
	if stats.GamesPlayed != 0 {
		t.Errorf("Expected 0 games played")
	}
	if stats.GetWinRate() != 0 {
		t.Errorf("Expected 0 win rate")
	}
}

func TestWinRate(t *testing.T) {
	stats := &GameStats{
		GamesPlayed: 10,
		Wins:        5,
		Losses:      3,
		Draws:       2,
	}
	rate := stats.GetWinRate()
	if rate != 50 {
		t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
	}
}

func TestStorageRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "connectn-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	t.Setenv("XDG_DATA_HOME", tmpDir)

	s, err := NewStorage()
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	defer s.Close()

	first, err := s.IsFirstLaunch()
	if err != nil {
		t.Fatalf("IsFirstLaunch: %v", err)
	}
	if !first {
		t.Error("expected first launch on a fresh store")
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatalf("MarkFirstLaunchComplete: %v", err)
	}
	if again, _ := s.IsFirstLaunch(); again {
		t.Error("expected IsFirstLaunch to be false after marking complete")
	}

	prefs := DefaultPreferences()
	prefs.FavoriteBot = "strong unlimited"
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	loaded, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if loaded.FavoriteBot != "strong unlimited" {
		t.Errorf("FavoriteBot = %q, want %q", loaded.FavoriteBot, "strong unlimited")
	}

	if err := s.RecordGame(winResult()); err != nil {
		t.Fatalf("RecordGame: %v", err)
	}
	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.Wins != 1 || stats.WinsByBotPreset["strong unlimited"] != 1 {
		t.Errorf("stats = %+v, want one recorded win against strong unlimited", stats)
	}
}

func winResult() GameResult {
	return GameResult{Won: true, BotPreset: "strong unlimited", ShapeKey: "7x6 P2 K4"}
}

func TestDataPaths(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "connectn-paths-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	t.Setenv("XDG_DATA_HOME", tmpDir)

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}
}
