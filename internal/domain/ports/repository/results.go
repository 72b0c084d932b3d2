package repository

import (
	"context"

	"outbound-email-engine/internal/domain/model"
)

// ResultSink persists assembled output rows to durable storage. Write
// returns the path (or logical name) the rows landed at so the caller
// can report it.
type ResultSink interface {
	Write(ctx context.Context, name string, rows []model.OutputRow) (string, error)
}
