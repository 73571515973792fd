package metrics

import (
	"context"
	"time"

	"github.com/iho/moneyfield/internal/record"
)

type instrumentedStore struct {
	name    string
	next    record.Store
	metrics *Metrics
}

// InstrumentStore wraps next so every Save is counted and timed under name.
func (m *Metrics) InstrumentStore(name string, next record.Store) record.Store {
	return &instrumentedStore{name: name, next: next, metrics: m}
}

func (s *instrumentedStore) Save(ctx context.Context, r *record.Record) error {
	started := time.Now()
	err := s.next.Save(ctx, r)
	s.metrics.ObserveSave(s.name, started, err)
	return err
}

func (s *instrumentedStore) Find(ctx context.Context, schema *record.Schema, id string) (*record.Record, error) {
	return s.next.Find(ctx, schema, id)
}
