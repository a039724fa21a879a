package item

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store manages work item persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a work item store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const itemColumns = `id, parent_id, title, description, acceptance, priority, estimate_minutes,
	files_json, depends_on_json, context_json, category, status, created_at, updated_at`

// Create inserts a new work item and returns its id.
func (s *Store) Create(ctx context.Context, it WorkItem) (string, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Priority == "" {
		it.Priority = PriorityMedium
	}
	if it.Status == "" {
		it.Status = StatusReady
	}
	now := time.Now().UTC().Format(time.RFC3339)
	filesJSON, dependsJSON, contextJSON, err := encodeItemBlobs(it)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO work_items(`+itemColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, nullableString(it.ParentID), it.Title, it.Description, it.Acceptance, it.Priority,
		it.EstimateMinutes, filesJSON, dependsJSON, contextJSON, it.Category, it.Status, now, now)
	if err != nil {
		return "", fmt.Errorf("insert work item: %w", err)
	}
	return it.ID, nil
}

// Get fetches a work item by id.
func (s *Store) Get(ctx context.Context, id string) (WorkItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM work_items WHERE id=?`, id)
	it, err := scanItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return WorkItem{}, fmt.Errorf("work item %s not found", id)
		}
		return WorkItem{}, fmt.Errorf("read work item: %w", err)
	}
	return it, nil
}

// Update replaces the mutable fields of a work item.
func (s *Store) Update(ctx context.Context, it WorkItem) error {
	now := time.Now().UTC().Format(time.RFC3339)
	filesJSON, dependsJSON, contextJSON, err := encodeItemBlobs(it)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE work_items
		SET title=?, description=?, acceptance=?, priority=?, estimate_minutes=?,
		    files_json=?, depends_on_json=?, context_json=?, category=?, status=?, updated_at=?
		WHERE id=?`,
		it.Title, it.Description, it.Acceptance, it.Priority, it.EstimateMinutes,
		filesJSON, dependsJSON, contextJSON, it.Category, it.Status, now, it.ID)
	if err != nil {
		return fmt.Errorf("update work item: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("work item %s not found", it.ID)
	}
	return nil
}

// MarkStatus updates a work item status and updated_at.
func (s *Store) MarkStatus(ctx context.Context, id, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `UPDATE work_items SET status=?, updated_at=? WHERE id=?`, status, now, id)
	if err != nil {
		return fmt.Errorf("update work item status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("work item %s not found", id)
	}
	return nil
}

// ListReady returns work items that are ready for execution.
func (s *Store) ListReady(ctx context.Context) ([]WorkItem, error) {
	return s.list(ctx, `SELECT `+itemColumns+` FROM work_items WHERE status=? ORDER BY created_at, id`, StatusReady)
}

// ListByParent returns the direct subtasks of a work item.
func (s *Store) ListByParent(ctx context.Context, parentID string) ([]WorkItem, error) {
	return s.list(ctx, `SELECT `+itemColumns+` FROM work_items WHERE parent_id=? ORDER BY created_at, id`, parentID)
}

// ApplyDecomposition inserts subtasks and marks the parent decomposed in one
// transaction. The parent becomes terminal for direct execution.
func (s *Store) ApplyDecomposition(ctx context.Context, parentID string, subtasks []WorkItem) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin apply decomposition: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, sub := range subtasks {
		if sub.ID == "" {
			sub.ID = uuid.NewString()
		}
		if sub.Priority == "" {
			sub.Priority = PriorityMedium
		}
		sub.ParentID = parentID
		filesJSON, dependsJSON, contextJSON, err := encodeItemBlobs(sub)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO work_items(`+itemColumns+`)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.ID, parentID, sub.Title, sub.Description, sub.Acceptance, sub.Priority,
			sub.EstimateMinutes, filesJSON, dependsJSON, contextJSON, sub.Category, StatusReady, now, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert subtask: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE work_items SET status=?, updated_at=? WHERE id=?`,
		StatusDecomposed, now, parentID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mark parent decomposed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply decomposition: %w", err)
	}
	return nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]WorkItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query work items: %w", err)
	}
	defer rows.Close()
	var out []WorkItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work items: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (WorkItem, error) {
	var it WorkItem
	var parentID sql.NullString
	var filesJSON, dependsJSON, contextJSON string
	if err := row.Scan(&it.ID, &parentID, &it.Title, &it.Description, &it.Acceptance, &it.Priority,
		&it.EstimateMinutes, &filesJSON, &dependsJSON, &contextJSON, &it.Category, &it.Status,
		&it.CreatedAt, &it.UpdatedAt); err != nil {
		return WorkItem{}, err
	}
	if parentID.Valid {
		it.ParentID = parentID.String
	}
	if err := json.Unmarshal([]byte(filesJSON), &it.Files); err != nil {
		return WorkItem{}, fmt.Errorf("parse files: %w", err)
	}
	if err := json.Unmarshal([]byte(dependsJSON), &it.DependsOn); err != nil {
		return WorkItem{}, fmt.Errorf("parse depends_on: %w", err)
	}
	if err := json.Unmarshal([]byte(contextJSON), &it.Context); err != nil {
		return WorkItem{}, fmt.Errorf("parse context: %w", err)
	}
	return it, nil
}

func encodeItemBlobs(it WorkItem) (files, depends, context string, err error) {
	if it.Files == nil {
		it.Files = []string{}
	}
	if it.DependsOn == nil {
		it.DependsOn = []string{}
	}
	if it.Context == nil {
		it.Context = map[string]any{}
	}
	filesJSON, err := json.Marshal(it.Files)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal files: %w", err)
	}
	dependsJSON, err := json.Marshal(it.DependsOn)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal depends_on: %w", err)
	}
	contextJSON, err := json.Marshal(it.Context)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal context: %w", err)
	}
	return string(filesJSON), string(dependsJSON), string(contextJSON), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
