package store

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
)

// GameMode represents who occupies each seat.
type GameMode int

const (
	ModeHumanVsHuman GameMode = iota
	ModeHumanVsBot
	ModeBotVsBot
)

// UserPreferences stores a player's last-used board shape and bot choice,
// so the front-end can pre-fill the configuration prompt on next launch.
type UserPreferences struct {
	Username     string    `json:"username"`
	Columns      int       `json:"columns"`
	Rows         int       `json:"rows"`
	Players      int       `json:"players"`
	Connect      int       `json:"connect"`
	GameMode     GameMode  `json:"game_mode"`
	FavoriteBot  string    `json:"favorite_bot"` // Registry name, e.g. "strong 8"
	SoundEnabled bool      `json:"sound_enabled"`
	LastPlayed   time.Time `json:"last_played"`
}

// DefaultPreferences returns the default classic 7x6 Connect Four shape.
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:     "Player",
		Columns:      7,
		Rows:         6,
		Players:      2,
		Connect:      4,
		GameMode:     ModeHumanVsBot,
		FavoriteBot:  "strong 8",
		SoundEnabled: true,
		LastPlayed:   time.Now(),
	}
}

// GameStats stores cumulative outcomes, broken down by bot preset name
// (Registry's keys, e.g. "random", "strong unlimited") rather than by a
// fixed difficulty enum, since SPEC_FULL.md's bot registry is open-ended.
type GameStats struct {
	GamesPlayed     int            `json:"games_played"`
	Wins            int            `json:"wins"`
	Losses          int            `json:"losses"`
	Draws           int            `json:"draws"`
	WinsByBotPreset map[string]int `json:"wins_by_bot_preset"`
	WinsByShape     map[string]int `json:"wins_by_shape"` // "CxR P K" summary key
	TotalPlayTime   time.Duration  `json:"total_play_time"`
	LongestWinStrk  int            `json:"longest_win_streak"`
	CurrentStreak   int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics.
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByBotPreset: make(map[string]int),
		WinsByShape:     make(map[string]int),
	}
}

// GameResult represents the outcome of one completed game, from the human
// player's perspective, to be folded into GameStats.
type GameResult struct {
	Won       bool
	Draw      bool
	BotPreset string // empty if no bot was involved
	ShapeKey  string // e.g. "7x6 P2 K4"
	Duration  time.Duration
}

// Storage wraps BadgerDB for persistent storage of preferences and
// statistics. It never stores transposition-cache entries: per spec.md §1's
// non-goal, the cache does not persist across invocations.
//
// Every record Storage touches is a JSON document under a single fixed
// key, so putRecord/getRecord below carry the marshal-then-Set and
// Get-then-unmarshal-or-default plumbing once, generically, instead of
// repeating the same badger.Txn dance per record type.
type Storage struct {
	db *badger.DB
}

// NewStorage creates a new storage instance rooted at the platform data
// directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// putRecord JSON-marshals v and stores it under key in a single update
// transaction.
func putRecord(db *badger.DB, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getRecord unmarshals the record stored under key into v, leaving v
// untouched (so callers can pre-seed it with defaults) if the key does
// not exist.
func getRecord(db *badger.DB, key string, v any) error {
	return db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// hasKey reports whether key is present, without reading its value.
func hasKey(db *badger.DB, key string) (bool, error) {
	found := false
	err := db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// IsFirstLaunch returns true if this is the first launch.
func (s *Storage) IsFirstLaunch() (bool, error) {
	done, err := hasKey(s.db, keyFirstLaunch)
	return !done, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete.
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences.
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return putRecord(s.db, keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found.
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	err := getRecord(s.db, keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves game statistics.
func (s *Storage) SaveStats(stats *GameStats) error {
	return putRecord(s.db, keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found.
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	err := getRecord(s.db, keyStats, stats)
	return stats, err
}

// RecordGame records a completed game and updates statistics.
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration

	if result.Draw {
		stats.Draws++
		stats.CurrentStreak = 0
	} else if result.Won {
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
		if result.BotPreset != "" {
			stats.WinsByBotPreset[result.BotPreset]++
		}
		if result.ShapeKey != "" {
			stats.WinsByShape[result.ShapeKey]++
		}
	} else {
		stats.Losses++
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// GetWinRate returns the win rate as a percentage (0-100).
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}
