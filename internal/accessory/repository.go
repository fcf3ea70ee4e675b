package accessory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface to the accessory directory.
//
// The reconciler depends only on this interface, never on directory
// internals, so the SQLite implementation can be swapped for a fake in
// tests or a different host store later.
type Repository interface {
	// GetByID retrieves an accessory by its identity.
	// Returns ErrNotFound if no such accessory exists.
	GetByID(ctx context.Context, id string) (*Accessory, error)

	// List retrieves all accessories in the directory.
	List(ctx context.Context) ([]Accessory, error)

	// Upsert creates the accessory or updates it in place, keyed by ID.
	Upsert(ctx context.Context, acc *Accessory) error

	// UpdateState persists the cached runtime state (power, selection).
	// Returns ErrNotFound if the accessory does not exist.
	UpdateState(ctx context.Context, id string, powerOn bool, activeIdentifier int) error

	// RemoveBatch deletes all accessories with the given identities in
	// one statement. Unknown identities are ignored.
	RemoveBatch(ctx context.Context, ids []string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed repository.
// The db parameter should be an open connection with the accessories
// table migrated.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves an accessory by its identity.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Accessory, error) {
	query := `
		SELECT id, name, address, port, source, power_on, active_identifier,
			inputs, created_at, updated_at
		FROM accessories
		WHERE id = ?`

	acc, err := scanAccessory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying accessory by id: %w", err)
	}
	return acc, nil
}

// List retrieves all accessories ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Accessory, error) {
	query := `
		SELECT id, name, address, port, source, power_on, active_identifier,
			inputs, created_at, updated_at
		FROM accessories
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing accessories: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var accs []Accessory
	for rows.Next() {
		acc, err := scanAccessory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning accessory: %w", err)
		}
		accs = append(accs, *acc)
	}
	return accs, rows.Err()
}

// Upsert creates the accessory or updates it in place.
//
// created_at is preserved on update; updated_at always moves forward.
func (r *SQLiteRepository) Upsert(ctx context.Context, acc *Accessory) error {
	inputs, err := json.Marshal(acc.Inputs)
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}

	now := time.Now().UTC()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now

	query := `
		INSERT INTO accessories
			(id, name, address, port, source, power_on, active_identifier,
			 inputs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			port = excluded.port,
			source = excluded.source,
			power_on = excluded.power_on,
			active_identifier = excluded.active_identifier,
			inputs = excluded.inputs,
			updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		acc.ID, acc.Name, acc.Address, acc.Port, acc.Source,
		boolToInt(acc.PowerOn), acc.ActiveIdentifier,
		string(inputs),
		acc.CreatedAt.Format(time.RFC3339),
		acc.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting accessory: %w", err)
	}
	return nil
}

// UpdateState persists only the cached runtime state fields.
func (r *SQLiteRepository) UpdateState(ctx context.Context, id string, powerOn bool, activeIdentifier int) error {
	query := `
		UPDATE accessories
		SET power_on = ?, active_identifier = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		boolToInt(powerOn), activeIdentifier,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating accessory state: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveBatch deletes all accessories with the given identities in one
// statement. A nil or empty slice is a no-op.
func (r *SQLiteRepository) RemoveBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := "DELETE FROM accessories WHERE id IN (" + placeholders + ")"
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("removing accessories: %w", err)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccessory reads one accessory row.
func scanAccessory(row rowScanner) (*Accessory, error) {
	var (
		acc       Accessory
		powerOn   int
		inputs    string
		createdAt string
		updatedAt string
	)

	if err := row.Scan(
		&acc.ID, &acc.Name, &acc.Address, &acc.Port, &acc.Source,
		&powerOn, &acc.ActiveIdentifier, &inputs, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	acc.PowerOn = powerOn != 0

	if err := json.Unmarshal([]byte(inputs), &acc.Inputs); err != nil {
		return nil, fmt.Errorf("decoding inputs: %w", err)
	}

	var err error
	if acc.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if acc.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &acc, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
