// Package persistence stores agent memory bundles, the event log and world
// metadata in SQLite. Saves are best-effort: callers log failures and carry on.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/talgya/neurovale/internal/world"
)

// DB wraps a SQLite connection for memory persistence.
type DB struct {
	conn *sqlx.DB
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// Open opens or creates a SQLite database at the given path, creating the
// parent directory if needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	conn.SetMaxOpenConns(1)

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	db := &DB{conn: conn, enc: enc, dec: dec}
	if err := db.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.enc.Close()
	db.dec.Close()
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agent_memory (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		bundle BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type memoryRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Bundle  []byte `db:"bundle"`
	SavedAt int64  `db:"saved_at"`
}

// LoadAll returns every stored memory bundle keyed by agent id. A bundle that
// fails to decode is logged and skipped.
func (db *DB) LoadAll(ctx context.Context) (map[string]Bundle, error) {
	var rows []memoryRow
	if err := db.conn.SelectContext(ctx, &rows, "SELECT id, name, bundle, saved_at FROM agent_memory"); err != nil {
		return nil, fmt.Errorf("select memories: %w", err)
	}

	out := make(map[string]Bundle, len(rows))
	for _, r := range rows {
		b, err := db.decode(r.Bundle)
		if err != nil {
			slog.Warn("skipping unreadable memory bundle", "agent", r.ID, "error", err)
			continue
		}
		out[r.ID] = b
	}
	return out, nil
}

// SaveAll writes a memory bundle for every agent (upsert). Returns the
// compressed bytes written.
func (db *DB) SaveAll(ctx context.Context, agentList []*world.Agent) (int, error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `INSERT OR REPLACE INTO agent_memory
		(id, name, bundle, saved_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	written := 0
	for _, a := range agentList {
		blob, err := db.encode(BundleOf(a))
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", a.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Name, blob, now); err != nil {
			return 0, fmt.Errorf("insert memory %s: %w", a.ID, err)
		}
		written += len(blob)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

func (db *DB) encode(b Bundle) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return db.enc.EncodeAll(raw, nil), nil
}

func (db *DB) decode(blob []byte) (Bundle, error) {
	var b Bundle
	raw, err := db.dec.DecodeAll(blob, nil)
	if err != nil {
		return b, fmt.Errorf("decompress: %w", err)
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return b, fmt.Errorf("unmarshal: %w", err)
	}
	return b, nil
}

// SaveEvents appends events to the database. Events already stored are skipped.
func (db *DB) SaveEvents(ctx context.Context, events []world.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO events (id, tick, kind, message) VALUES (?, ?, ?, ?)",
			e.ID, e.Tick, string(e.Kind), e.Message,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(ctx context.Context, limit int) ([]world.Event, error) {
	var events []world.Event
	err := db.conn.SelectContext(ctx, &events,
		"SELECT id, tick, kind, message FROM events ORDER BY tick DESC, rowid DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorldState saves memory bundles, the event log and the clock position
// from a published snapshot.
func (db *DB) SaveWorldState(ctx context.Context, snap *world.Snapshot) error {
	written, err := db.SaveAll(ctx, snap.Agents)
	if err != nil {
		return fmt.Errorf("save memories: %w", err)
	}
	if err := db.SaveEvents(ctx, snap.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta(ctx, "last_tick", strconv.FormatUint(snap.Tick, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta(ctx, "last_day", strconv.Itoa(snap.Day)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.SaveMeta(ctx, "time_of_day", strconv.FormatFloat(snap.TimeOfDay, 'f', 4, 64)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved",
		"tick", humanize.Comma(int64(snap.Tick)),
		"agents", len(snap.Agents),
		"bundle_bytes", humanize.Bytes(uint64(written)),
	)
	return nil
}

// LoadClock rebuilds the calendar position saved by SaveWorldState.
// ok is false when no world has been saved yet.
func (db *DB) LoadClock(ctx context.Context, seasonLengthDays int) (clock world.Clock, ok bool, err error) {
	tickStr, err := db.GetMeta(ctx, "last_tick")
	if errors.Is(err, sql.ErrNoRows) {
		return clock, false, nil
	}
	if err != nil {
		return clock, false, err
	}
	if clock.Tick, err = strconv.ParseUint(tickStr, 10, 64); err != nil {
		return clock, false, fmt.Errorf("last_tick: %w", err)
	}

	clock.Day = 1
	if v, err := db.GetMeta(ctx, "last_day"); err == nil {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			clock.Day = d
		}
	}
	if v, err := db.GetMeta(ctx, "time_of_day"); err == nil {
		if h, err := strconv.ParseFloat(v, 64); err == nil && h >= 0 && h < 24 {
			clock.TimeOfDay = h
		}
	}
	clock.Season = world.SeasonForDay(clock.Day, seasonLengthDays)
	clock.Weather = world.WeatherClear
	return clock, true, nil
}
