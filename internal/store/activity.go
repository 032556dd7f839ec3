package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultActivityLimit is the number of entries List returns when no limit is given.
const DefaultActivityLimit = 100

// Activity is one entry of the activity log.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Value     string    `json:"value,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityRepository provides access to the activity log.
type ActivityRepository struct {
	db *sql.DB
}

// Activity returns the activity repository for this store.
func (s *Store) Activity() *ActivityRepository {
	return &ActivityRepository{db: s.db}
}

// Create inserts a new entry. A missing ID is generated and a zero
// CreatedAt is set to the current time.
func (r *ActivityRepository) Create(a *Activity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO activity (id, type, value, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Type, a.Value, a.Message, a.CreatedAt.UTC(),
	)
	return err
}

// GetByID retrieves an entry by its ID.
func (r *ActivityRepository) GetByID(id string) (*Activity, error) {
	a := &Activity{}

	err := r.db.QueryRow(
		`SELECT id, type, value, message, created_at FROM activity WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.Type, &a.Value, &a.Message, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return a, nil
}

// List returns the newest entries first, at most limit of them. An optional
// type filters the entries; an empty type returns all of them.
func (r *ActivityRepository) List(typ string, limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	query := `SELECT id, type, value, message, created_at FROM activity`
	args := []any{}
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, typ)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Activity
	for rows.Next() {
		a := &Activity{}
		if err := rows.Scan(&a.ID, &a.Type, &a.Value, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// Count returns the number of stored entries.
func (r *ActivityRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM activity`).Scan(&n)
	return n, err
}

// Prune deletes entries created before cutoff and returns how many were removed.
func (r *ActivityRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM activity WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
