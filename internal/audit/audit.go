// Package audit provides an append-only event journal.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Entry is one recorded event.
type Entry struct {
	ID     int64
	TS     time.Time
	Actor  string
	Action string
	Detail string
}

// Filter narrows a Query.
type Filter struct {
	Actor  string
	Action string
	Since  time.Time
}

// Sink records and queries events.
type Sink interface {
	Record(ctx context.Context, actor, action, detail string) error
	Query(ctx context.Context, limit int, filter Filter) ([]Entry, error)
}

// Log is a SQLite-backed Sink.
type Log struct {
	db *sql.DB
}

// NewLog creates an event log on the given database.
func NewLog(db *sql.DB) *Log {
	return &Log{db: db}
}

// Record appends one event.
func (l *Log) Record(ctx context.Context, actor, action, detail string) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := l.db.ExecContext(ctx, `INSERT INTO events(ts, actor, action, detail) VALUES(?, ?, ?, ?)`,
		ts, actor, action, detail); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Query returns up to limit events matching the filter, newest first.
func (l *Log) Query(ctx context.Context, limit int, filter Filter) ([]Entry, error) {
	query := `SELECT id, ts, actor, action, detail FROM events`
	var where []string
	var args []any
	if filter.Actor != "" {
		where = append(where, "actor=?")
		args = append(args, filter.Actor)
	}
	if filter.Action != "" {
		where = append(where, "action=?")
		args = append(args, filter.Action)
	}
	if !filter.Since.IsZero() {
		where = append(where, "ts>=?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Actor, &e.Action, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse event ts: %w", err)
		}
		e.TS = parsed
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}
