// Package config loads and stores CLI configuration in the XDG config dir,
// and centralizes the constants that bound the question-answering pipeline.
// Only non-secret settings are kept here; the OpenAI API key goes to the
// OS keychain or the OPENAI_API_KEY environment variable.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"revq/cli/internal/xdg"
)

// LLM settings.
const (
	// DefaultModel is the chat-completion model used for both pipeline stages.
	DefaultModel = "gpt-4o-mini"
	// Temperature is fixed at zero so generated SQL is deterministic.
	Temperature = 0.0
)

// Retry / resilience settings for external LLM calls.
const (
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries = 3
	// InitialBackoff is the delay before the first retry; it doubles each attempt.
	InitialBackoff = 1 * time.Second
)

// Safety bounds.
const (
	// MaxQuestionLength bounds user input before it reaches the LLM, in runes.
	MaxQuestionLength = 500
	// MaxResultRows is the LIMIT appended to queries that carry none.
	MaxResultRows = 1000
	// QueryTimeout bounds a single query against the store.
	QueryTimeout = 30 * time.Second
)

// RequiredDataFiles are the CSV files the store loads at startup.
var RequiredDataFiles = []string{"dim_writer.csv", "dim_song.csv", "fact_royalties.csv"}

// SchemaDescription is the database schema prompt sent to the generation model.
const SchemaDescription = `You have access to a music publishing royalties database with these tables:

TABLE: dim_writer
- writer_id (INTEGER, PRIMARY KEY) - Unique ID for each songwriter
- writer_name (TEXT) - Full name of the songwriter

TABLE: dim_song
- song_id (INTEGER) - Unique ID for each song (NOTE: a song_id may appear multiple times due to historical title changes)
- title (TEXT) - Song title (may have changed over time)
- writer_id (INTEGER, FOREIGN KEY → dim_writer.writer_id) - The songwriter who wrote this song
- etl_date (TEXT) - Date this record was loaded. Use the row with the LATEST etl_date per song_id to get the current title.

TABLE: fact_royalties
- transaction_id (TEXT, PRIMARY KEY) - Unique transaction ID
- song_id (INTEGER, FOREIGN KEY → dim_song.song_id) - The song this royalty is for
- amount_usd (REAL) - Revenue amount in USD

VIEW: current_songs
- A pre-built view that returns only the LATEST title for each song_id.
- Columns: song_id, title, writer_id
- USE THIS VIEW instead of dim_song when joining to fact_royalties to avoid double-counting.

RELATIONSHIPS:
- dim_writer.writer_id → dim_song.writer_id (one writer has many songs)
- dim_song.song_id → fact_royalties.song_id (one song has many royalty transactions)
- Use current_songs instead of dim_song for accurate revenue calculations.`

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel string `json:"log_level"`
	Model    string `json:"model"`
	DataDir  string `json:"data_dir"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	c := defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	return c, nil
}

func defaults() Config {
	return Config{
		LogLevel: "info",
		Model:    DefaultModel,
		DataDir:  "data",
	}
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// ValidateData checks that every required CSV file exists under dataDir.
// It returns a single error listing everything that is missing so the user
// can fix the setup in one pass.
func ValidateData(dataDir string) error {
	var missing []string
	for _, name := range RequiredDataFiles {
		p := filepath.Join(dataDir, name)
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("data files not found: %v", missing)
	}
	return nil
}
