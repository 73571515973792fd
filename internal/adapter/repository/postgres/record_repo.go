// Package postgres stores records in PostgreSQL tables, one table per schema
// with a text "id" primary key and one column per schema column.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/iho/moneyfield/internal/domain"
	"github.com/iho/moneyfield/internal/record"
)

type pgxPool interface {
	txBeginner
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordRepository implements record.Store.
type RecordRepository struct {
	pool    pgxPool
	tx      *TxManager
	retrier *Retrier
	ids     record.IDGenerator
	logger  zerolog.Logger
}

// NewRecordRepository creates a repository over pool, usually a *pgxpool.Pool.
// A nil ids uses ULIDs.
func NewRecordRepository(pool pgxPool, ids record.IDGenerator, logger zerolog.Logger) *RecordRepository {
	if ids == nil {
		ids = record.NewULIDGenerator()
	}
	return &RecordRepository{
		pool:    pool,
		tx:      newTxManager(pool),
		retrier: NewRetrier(logger),
		ids:     ids,
		logger:  logger,
	}
}

// Save upserts r by id, assigning an id to new records. Serialization
// failures and deadlocks are retried.
func (s *RecordRepository) Save(ctx context.Context, r *record.Record) error {
	args, err := columnArgs(r)
	if err != nil {
		return err
	}

	// A new record only takes its id once the row is stored.
	id := r.ID()
	if id == "" {
		id = s.ids.Generate()
	}
	args = append([]any{id}, args...)
	query := upsertQuery(r.Schema())

	err = s.retrier.Retry(ctx, func() error {
		return s.tx.InTx(ctx, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, query, args...)
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", r.Schema().Table(), id, err)
	}
	r.SetID(id)

	s.logger.Debug().Str("table", r.Schema().Table()).Str("id", id).Msg("record saved")
	return nil
}

// Find loads the row with id.
func (s *RecordRepository) Find(ctx context.Context, schema *record.Schema, id string) (*record.Record, error) {
	cols := schema.Columns()
	dest := make([]any, 0, len(cols)+1)
	var gotID string
	dest = append(dest, &gotID)
	for _, col := range cols {
		if col.Kind == record.KindInteger {
			dest = append(dest, &pgtype.Int8{})
		} else {
			dest = append(dest, &pgtype.Text{})
		}
	}

	if err := s.pool.QueryRow(ctx, selectQuery(schema), id).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrRecordNotFound, schema.Table(), id)
		}
		return nil, fmt.Errorf("select %s/%s: %w", schema.Table(), id, err)
	}

	values := make(map[string]any, len(cols))
	for i, col := range cols {
		switch v := dest[i+1].(type) {
		case *pgtype.Int8:
			values[col.Name] = int8ToValue(*v)
		case *pgtype.Text:
			values[col.Name] = textToValue(*v)
		}
	}

	return record.Load(schema, gotID, values)
}

func columnArgs(r *record.Record) ([]any, error) {
	cols := r.Schema().Columns()
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		if col.Kind == record.KindText {
			v, ok := r.Text(col.Name)
			args = append(args, pgtype.Text{String: v, Valid: ok})
			continue
		}
		if raw, invalid := r.Raw(col.Name); invalid {
			return nil, fmt.Errorf("%w: %s.%s holds %q", domain.ErrNotANumber, r.Schema().Table(), col.Name, raw)
		}
		v, ok := r.Int(col.Name)
		args = append(args, pgtype.Int8{Int64: v, Valid: ok})
	}
	return args, nil
}

func upsertQuery(schema *record.Schema) string {
	cols := schema.Columns()
	names := make([]string, 0, len(cols)+1)
	params := make([]string, 0, len(cols)+1)
	updates := make([]string, 0, len(cols))

	names = append(names, quote(record.IDColumn))
	params = append(params, "$1")
	for i, col := range cols {
		name := quote(col.Name)
		names = append(names, name)
		params = append(params, fmt.Sprintf("$%d", i+2))
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s)",
		quote(schema.Table()), strings.Join(names, ", "), strings.Join(params, ", "), quote(record.IDColumn))
	if len(updates) == 0 {
		return q + " DO NOTHING"
	}
	return q + " DO UPDATE SET " + strings.Join(updates, ", ")
}

func selectQuery(schema *record.Schema) string {
	cols := schema.Columns()
	names := make([]string, 0, len(cols)+1)
	names = append(names, quote(record.IDColumn))
	for _, col := range cols {
		names = append(names, quote(col.Name))
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		strings.Join(names, ", "), quote(schema.Table()), quote(record.IDColumn))
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func int8ToValue(v pgtype.Int8) any {
	if !v.Valid {
		return nil
	}
	return v.Int64
}

func textToValue(v pgtype.Text) any {
	if !v.Valid {
		return nil
	}
	return v.String
}
