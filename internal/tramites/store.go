package tramites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/novagadgets/novadesk/internal/observability"
)

const selectColumns = `id, nombre, descripcion, estado, usuario_whatsapp, fecha_creacion, fecha_actualizacion`

// Store persists tramites in a SQL database. Queries use "?" placeholders, which
// both the MySQL and SQLite drivers accept.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a store over db
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Create inserts a tramite with the default status and returns its id
func (s *Store) Create(ctx context.Context, in NewTramite) (id int64, err error) {
	defer func() { observability.RecordTramiteOp("create", err == nil) }()

	if strings.TrimSpace(in.Name) == "" {
		return 0, ErrNameRequired
	}

	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tramites (nombre, descripcion, estado, usuario_whatsapp, fecha_creacion, fecha_actualizacion)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Name, in.Description, DefaultStatus, in.Phone, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tramite: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read tramite id: %w", err)
	}
	return id, nil
}

// Get returns the tramite with id, or ErrNotFound
func (s *Store) Get(ctx context.Context, id int64) (t *Tramite, err error) {
	defer func() { observability.RecordTramiteOp("get", err == nil || errors.Is(err, ErrNotFound)) }()
	return getTramite(ctx, s.db, id)
}

// List returns every tramite, newest first. No rows yields an empty slice.
func (s *Store) List(ctx context.Context) (list []Tramite, err error) {
	defer func() { observability.RecordTramiteOp("list", err == nil) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM tramites ORDER BY fecha_creacion DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tramites: %w", err)
	}
	defer rows.Close()

	list = []Tramite{}
	for rows.Next() {
		t, err := scanTramite(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tramites: %w", err)
	}
	return list, nil
}

// Update applies the non-nil fields of upd and refreshes the update timestamp
func (s *Store) Update(ctx context.Context, id int64, upd TramiteUpdate) (t *Tramite, err error) {
	defer func() {
		observability.RecordTramiteOp("update", err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoFields))
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getTramite(ctx, tx, id); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, ErrNoFields
	}

	var (
		sets []string
		args []any
	)
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"nombre", upd.Name},
		{"descripcion", upd.Description},
		{"estado", upd.Status},
		{"usuario_whatsapp", upd.Phone},
	} {
		if f.value != nil {
			sets = append(sets, f.column+" = ?")
			args = append(args, *f.value)
		}
	}
	sets = append(sets, "fecha_actualizacion = ?")
	args = append(args, s.timestamp(), id)

	if _, err := tx.ExecContext(ctx, `UPDATE tramites SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, fmt.Errorf("failed to update tramite: %w", err)
	}

	t, err = getTramite(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tramite update: %w", err)
	}
	return t, nil
}

// Delete removes the tramite with id, or returns ErrNotFound
func (s *Store) Delete(ctx context.Context, id int64) (err error) {
	defer func() { observability.RecordTramiteOp("delete", err == nil || errors.Is(err, ErrNotFound)) }()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tramites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tramite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete tramite: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getTramite(ctx context.Context, q queryer, id int64) (*Tramite, error) {
	row := q.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM tramites WHERE id = ?`, id)
	t, err := scanTramite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func scanTramite(row scanner) (*Tramite, error) {
	var t Tramite
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.Phone, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tramite: %w", err)
	}
	return &t, nil
}
