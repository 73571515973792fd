// Package memory provides an in-process record.Store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/moneyfield/internal/domain"
	"github.com/iho/moneyfield/internal/record"
)

// RecordRepository keeps stored column values per table and id.
type RecordRepository struct {
	mu     sync.RWMutex
	tables map[string]map[string]map[string]any
	ids    record.IDGenerator
}

// NewRecordRepository creates an empty repository. A nil ids uses ULIDs.
func NewRecordRepository(ids record.IDGenerator) *RecordRepository {
	if ids == nil {
		ids = record.NewULIDGenerator()
	}
	return &RecordRepository{
		tables: make(map[string]map[string]map[string]any),
		ids:    ids,
	}
}

// Save stores a copy of the record's values, assigning an id to new records.
func (s *RecordRepository) Save(ctx context.Context, r *record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	values := r.Values()
	for _, col := range r.Schema().Columns() {
		if raw, invalid := r.Raw(col.Name); invalid {
			return fmt.Errorf("%w: %s.%s holds %q", domain.ErrNotANumber, r.Schema().Table(), col.Name, raw)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.ID()
	if id == "" {
		id = s.ids.Generate()
	}

	table := s.tables[r.Schema().Table()]
	if table == nil {
		table = make(map[string]map[string]any)
		s.tables[r.Schema().Table()] = table
	}
	table[id] = values
	r.SetID(id)

	return nil
}

// Find loads the record stored under id.
func (s *RecordRepository) Find(ctx context.Context, schema *record.Schema, id string) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	values, ok := s.tables[schema.Table()][id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrRecordNotFound, schema.Table(), id)
	}

	return record.Load(schema, id, values)
}

// Len returns the number of records stored for table.
func (s *RecordRepository) Len(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}
