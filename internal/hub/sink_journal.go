package hub

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"dispatchd/internal/common/fsutil"
	"dispatchd/pkg/types"
)

// journalSink appends every event it receives to a SQLite table.
type journalSink struct {
	sinkBase
	db    *sql.DB
	limit int
	log   zerolog.Logger
	// failures counts inserts that did not make it to disk.
	failures uint64
}

func openJournalSink(name, path string, limit int, l zerolog.Logger) (*journalSink, error) {
	dsn := ":memory:"
	if path != "" {
		p, err := fsutil.ExpandHome(path)
		if err != nil {
			return nil, err
		}
		dsn = p
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", name, err)
	}
	// one connection: an in-memory database exists per connection
	db.SetMaxOpenConns(1)
	s := &journalSink{
		sinkBase: sinkBase{name: name, kind: KindJournal},
		db:       db,
		limit:    limit,
		log:      l,
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal %s: %w", name, err)
	}
	return s, nil
}

func (s *journalSink) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT,
			channel TEXT,
			name TEXT,
			payload_json TEXT,
			emitted_at TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_channel ON events(channel);`,
		`CREATE TABLE IF NOT EXISTS publisher_deaths (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			noticed_at TIMESTAMP
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *journalSink) Invoke(e types.Event) {
	s.received++
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		payload = []byte("null")
	}
	if _, err := s.db.Exec(`INSERT INTO events(id, channel, name, payload_json, emitted_at) VALUES(?,?,?,?,?)`,
		e.ID, e.Channel, e.Name, string(payload), e.Time.UTC()); err != nil {
		s.failures++
		sinkWriteFailuresTotal.WithLabelValues(s.name).Inc()
		s.log.Error().Err(err).Str("id", e.ID).Msg("journal insert")
	}
}

func (s *journalSink) Info() types.SinkInfo {
	info := s.sinkBase.Info()
	info.WriteFailures = s.failures
	return info
}

func (s *journalSink) PublisherDied() {
	s.died++
	if _, err := s.db.Exec(`INSERT INTO publisher_deaths(noticed_at) VALUES(?)`, time.Now().UTC()); err != nil {
		s.log.Error().Err(err).Msg("journal publisher death")
	}
}

// Recent returns the newest journal rows, oldest first.
func (s *journalSink) Recent() ([]types.Event, error) {
	rows, err := s.db.Query(`SELECT id, channel, name, payload_json, emitted_at FROM events ORDER BY seq DESC LIMIT ?`, s.limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.Event
	for rows.Next() {
		var (
			e       types.Event
			payload string
		)
		if err := rows.Scan(&e.ID, &e.Channel, &e.Name, &payload, &e.Time); err != nil {
			return nil, err
		}
		if payload != "" && payload != "null" {
			if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
				return nil, fmt.Errorf("decode payload of %s: %w", e.ID, err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *journalSink) Close() error {
	s.Base.Close()
	return s.db.Close()
}
