package repository

import (
	"context"

	"outbound-email-engine/internal/domain/model"
)

// ContactSource loads the contact database and applies eligibility
// filtering. Records are returned in source order; cohort splitting
// happens downstream.
type ContactSource interface {
	Load(ctx context.Context) ([]model.ContactRecord, error)
}
