package ticket

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store manages ticket persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a ticket store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new ticket and returns its id.
func (s *Store) Create(ctx context.Context, t Ticket) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Type == "" {
		t.Type = TypeCoding
	}
	if t.Status == "" {
		t.Status = StatusOpen
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `INSERT INTO tickets(id, type, title, body, status, work_item_id, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Type, t.Title, t.Body, t.Status, nullableString(t.WorkItemID), now, now)
	if err != nil {
		return "", fmt.Errorf("insert ticket: %w", err)
	}
	return t.ID, nil
}

// Get fetches a ticket by id.
func (s *Store) Get(ctx context.Context, id string) (Ticket, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, type, title, body, status, work_item_id, created_at, updated_at
		FROM tickets WHERE id=?`, id)
	t, err := scanTicket(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Ticket{}, fmt.Errorf("ticket %s not found", id)
		}
		return Ticket{}, fmt.Errorf("read ticket: %w", err)
	}
	return t, nil
}

// MarkStatus updates a ticket status and updated_at.
func (s *Store) MarkStatus(ctx context.Context, id, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `UPDATE tickets SET status=?, updated_at=? WHERE id=?`, status, now, id)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("ticket %s not found", id)
	}
	return nil
}

// ListByStatus returns tickets with the given status.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, title, body, status, work_item_id, created_at, updated_at
		FROM tickets WHERE status=? ORDER BY created_at, id`, status)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return out, nil
}

// AddReply appends a reply to a ticket.
func (s *Store) AddReply(ctx context.Context, ticketID, author, body string, score *int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `INSERT INTO ticket_replies(ticket_id, author, body, score, created_at)
		VALUES(?, ?, ?, ?, ?)`, ticketID, author, body, nullableInt(score), now)
	if err != nil {
		return fmt.Errorf("insert reply: %w", err)
	}
	return nil
}

// CountRepliesFrom returns how many replies a given author has left on a ticket.
func (s *Store) CountRepliesFrom(ctx context.Context, ticketID, author string) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ticket_replies WHERE ticket_id=? AND author=?`, ticketID, author)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count replies: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (Ticket, error) {
	var t Ticket
	var workItemID sql.NullString
	if err := row.Scan(&t.ID, &t.Type, &t.Title, &t.Body, &t.Status, &workItemID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Ticket{}, err
	}
	if workItemID.Valid {
		t.WorkItemID = workItemID.String
	}
	return t, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
