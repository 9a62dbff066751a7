package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adityahw/koperasi-backoffice/internal/application/port"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
	"github.com/adityahw/koperasi-backoffice/internal/infrastructure/persistence/sqlite"
)

// ApprovalRecordRepository implements port.ApprovalRecordRepository. The
// table is insert-only; nothing here updates or deletes.
type ApprovalRecordRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewApprovalRecordRepository creates a new approval record repository.
func NewApprovalRecordRepository(db *sqlite.DB, logger *zap.Logger) port.ApprovalRecordRepository {
	return &ApprovalRecordRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an approval record.
func (r *ApprovalRecordRepository) Create(ctx context.Context, rec *entity.ApprovalRecord) error {
	query := `
		INSERT INTO approval_records (
			id, application_id, step, decision, actor_id, notes, pass_number, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		rec.ID.String(),
		rec.ApplicationID.String(),
		rec.Step.String(),
		rec.Decision.String(),
		rec.ActorID,
		rec.Notes,
		rec.PassNumber,
		rec.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create approval record", zap.Error(err))
		return fmt.Errorf("failed to create approval record: %w", err)
	}

	return nil
}

// GetByApplicationID returns the history in insertion order.
func (r *ApprovalRecordRepository) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]*entity.ApprovalRecord, error) {
	query := `
		SELECT id, application_id, step, decision, actor_id, notes, pass_number, timestamp
		FROM approval_records
		WHERE application_id = ?
		ORDER BY timestamp, rowid
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, applicationID.String())
	if err != nil {
		r.logger.Error("Failed to get approval records", zap.Error(err))
		return nil, fmt.Errorf("failed to get approval records: %w", err)
	}
	defer rows.Close()

	var records []*entity.ApprovalRecord
	for rows.Next() {
		var (
			rec      entity.ApprovalRecord
			idStr    string
			appIDStr string
			step     string
			decision string
		)
		if err := rows.Scan(&idStr, &appIDStr, &step, &decision, &rec.ActorID, &rec.Notes, &rec.PassNumber, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan approval record: %w", err)
		}
		if rec.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("invalid record id %q: %w", idStr, err)
		}
		if rec.ApplicationID, err = uuid.Parse(appIDStr); err != nil {
			return nil, fmt.Errorf("invalid application id %q: %w", appIDStr, err)
		}
		rec.Step = entity.Step(step)
		rec.Decision = entity.Decision(decision)
		records = append(records, &rec)
	}

	return records, rows.Err()
}
