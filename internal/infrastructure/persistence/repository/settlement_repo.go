package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adityahw/koperasi-backoffice/internal/application/port"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
	"github.com/adityahw/koperasi-backoffice/internal/infrastructure/persistence/sqlite"
)

// DisbursementRepository implements port.DisbursementRepository. The unique
// index on application_id makes the created-once contract a database fact.
type DisbursementRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewDisbursementRepository creates a new disbursement repository.
func NewDisbursementRepository(db *sqlite.DB, logger *zap.Logger) port.DisbursementRepository {
	return &DisbursementRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the disbursement record.
func (r *DisbursementRepository) Create(ctx context.Context, rec *entity.DisbursementRecord) error {
	query := `
		INSERT INTO disbursement_records (
			id, application_id, actor_id, tx_date, tx_time, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		rec.ID.String(),
		rec.ApplicationID.String(),
		rec.ActorID,
		rec.TxDate,
		rec.TxTime,
		rec.Notes,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create disbursement record", zap.Error(err))
		return fmt.Errorf("failed to create disbursement record: %w", err)
	}

	return nil
}

// GetByApplicationID returns the disbursement record, or nil when absent.
func (r *DisbursementRepository) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.DisbursementRecord, error) {
	query := `
		SELECT id, application_id, actor_id, tx_date, tx_time, notes, created_at
		FROM disbursement_records
		WHERE application_id = ?
	`

	var (
		rec      entity.DisbursementRecord
		idStr    string
		appIDStr string
	)
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, applicationID.String()).Scan(
		&idStr, &appIDStr, &rec.ActorID, &rec.TxDate, &rec.TxTime, &rec.Notes, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get disbursement record: %w", err)
	}

	if rec.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", idStr, err)
	}
	if rec.ApplicationID, err = uuid.Parse(appIDStr); err != nil {
		return nil, fmt.Errorf("invalid application id %q: %w", appIDStr, err)
	}

	return &rec, nil
}

// AuthorizationRepository implements port.AuthorizationRepository.
type AuthorizationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewAuthorizationRepository creates a new authorization repository.
func NewAuthorizationRepository(db *sqlite.DB, logger *zap.Logger) port.AuthorizationRepository {
	return &AuthorizationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the authorization record.
func (r *AuthorizationRepository) Create(ctx context.Context, rec *entity.AuthorizationRecord) error {
	query := `
		INSERT INTO authorization_records (
			id, application_id, actor_id, auth_date, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		rec.ID.String(),
		rec.ApplicationID.String(),
		rec.ActorID,
		rec.AuthDate,
		rec.Notes,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create authorization record", zap.Error(err))
		return fmt.Errorf("failed to create authorization record: %w", err)
	}

	return nil
}

// GetByApplicationID returns the authorization record, or nil when absent.
func (r *AuthorizationRepository) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.AuthorizationRecord, error) {
	query := `
		SELECT id, application_id, actor_id, auth_date, notes, created_at
		FROM authorization_records
		WHERE application_id = ?
	`

	var (
		rec      entity.AuthorizationRecord
		idStr    string
		appIDStr string
	)
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, applicationID.String()).Scan(
		&idStr, &appIDStr, &rec.ActorID, &rec.AuthDate, &rec.Notes, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization record: %w", err)
	}

	if rec.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", idStr, err)
	}
	if rec.ApplicationID, err = uuid.Parse(appIDStr); err != nil {
		return nil, fmt.Errorf("invalid application id %q: %w", appIDStr, err)
	}

	return &rec, nil
}
