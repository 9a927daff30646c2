// # internal/migration/sink.go
package migration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"retrofit/internal/shared/observability"
)

// Record is one persisted migration instruction: the add-parameter
// requirement downstream API consumers must apply against their own source.
type Record struct {
	ID             string
	RunKey         string
	FunctionName   string
	QualifiedName  string
	FilePath       string
	Access         string
	ParameterName  string
	ParameterType  string
	ImportLocation string
	Provenance     string
	Payload        []byte // downstream requirement, JSON-encoded
	CreatedAt      time.Time
}

// Sink receives migration records. Implementations must be safe for
// sequential use from one executor; no concurrency guarantees are required.
type Sink interface {
	Record(ctx context.Context, rec Record) error
	Close() error
}

// Stamp fills server-assigned fields on a fresh record.
func Stamp(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	observability.MigrationsRecorded.Inc()
	return rec
}

// MemorySink accumulates records in memory and is the default sink; the
// caller reads them off the final report path.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Record(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Stamp(rec))
	return nil
}

func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

func (s *MemorySink) Close() error { return nil }
