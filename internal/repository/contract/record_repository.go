package contract

import (
	"context"

	"clinic-erp-be/internal/record"
	"clinic-erp-be/internal/repository/specification"
)

// RecordRepository is the generic persistence surface of the engine: any
// registered model flows through it as a record.Record, so no per-entity
// repository code exists on the generic path.
type RecordRepository interface {
	Insert(ctx context.Context, rec *record.Record) error
	Save(ctx context.Context, rec *record.Record) error
	// FindOne returns (nil, nil) when no row matches.
	FindOne(ctx context.Context, proto record.Model, specs ...specification.Specification) (*record.Record, error)
	HardDelete(ctx context.Context, rec *record.Record) error
}
