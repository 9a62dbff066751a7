// Package port declares the boundaries the workflow engine consumes:
// durable application storage, the actor/role provider, and transactional
// execution. Implementations live under internal/infrastructure.
package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
)

// ListFilter narrows and paginates application listings.
type ListFilter struct {
	Kind        entity.Kind
	Status      entity.Status
	ApplicantID string
	Limit       int
	Offset      int
}

// ApplicationRepository defines persistence operations for Application.
//
// Update is the compare-and-set write the concurrency model depends on: the
// write must be conditioned on expectedStatus as observed at read time, and
// a lost race must surface apperr.ErrConflict, never a silent overwrite.
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	Update(ctx context.Context, app *entity.Application, expectedStatus entity.Status) error
	List(ctx context.Context, filter ListFilter) ([]*entity.Application, int64, error)
}

// ApprovalRecordRepository defines persistence operations for the
// append-only approval history.
type ApprovalRecordRepository interface {
	Create(ctx context.Context, rec *entity.ApprovalRecord) error
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]*entity.ApprovalRecord, error)
}

// DisbursementRepository defines persistence operations for the one-shot
// disbursement record.
type DisbursementRepository interface {
	Create(ctx context.Context, rec *entity.DisbursementRecord) error
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.DisbursementRecord, error)
}

// AuthorizationRepository defines persistence operations for the one-shot
// authorization record.
type AuthorizationRepository interface {
	Create(ctx context.Context, rec *entity.AuthorizationRecord) error
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.AuthorizationRecord, error)
}

// RoleProvider resolves the calling user's role set for authorization
// checks. Backed by member storage here; an identity service in other
// deployments.
type RoleProvider interface {
	RolesOf(ctx context.Context, actorID string) ([]entity.Role, error)
}

// TransactionManager handles database transactions.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
