package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adityahw/koperasi-backoffice/internal/application/port"
	"github.com/adityahw/koperasi-backoffice/internal/domain/apperr"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
	"github.com/adityahw/koperasi-backoffice/internal/infrastructure/persistence/sqlite"
)

// ApplicationRepository implements port.ApplicationRepository over sqlite.
// Monetary columns are stored as exact decimal strings, never floats.
type ApplicationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(db *sqlite.DB, logger *zap.Logger) port.ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

const applicationColumns = `
	id, kind, applicant_id, status, current_step,
	amount, tenor_months, loan_type, purpose, deposit_ref, early_withdrawal,
	annual_rate_percent, monthly_installment, total_repayment, interest_amount,
	shop_margin_amount, maturity_amount, penalty_amount, net_amount, penalty_clamped,
	revision_count, revision_notes, rejection_reason, created_at, updated_at`

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	args := append([]interface{}{
		app.ID.String(),
		app.Kind.String(),
		app.ApplicantID,
		app.Status.String(),
		stepValue(app.CurrentStep),
	}, payloadArgs(app)...)
	args = append(args,
		app.RevisionCount,
		app.RevisionNotes,
		app.RejectionReason,
		app.CreatedAt,
		app.UpdatedAt,
	)

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to create application", zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID retrieves an application by id, or nil when absent.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`

	app, err := scanApplication(r.db.Executor(ctx).QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get application", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// Update writes the application conditioned on the status observed at read
// time. A lost race surfaces apperr.ErrConflict; a vanished row surfaces
// apperr.ErrNotFound.
func (r *ApplicationRepository) Update(ctx context.Context, app *entity.Application, expectedStatus entity.Status) error {
	query := `
		UPDATE applications SET
			status = ?, current_step = ?,
			amount = ?, tenor_months = ?, loan_type = ?, purpose = ?,
			deposit_ref = ?, early_withdrawal = ?,
			annual_rate_percent = ?, monthly_installment = ?, total_repayment = ?,
			interest_amount = ?, shop_margin_amount = ?, maturity_amount = ?,
			penalty_amount = ?, net_amount = ?, penalty_clamped = ?,
			revision_count = ?, revision_notes = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	args := append([]interface{}{
		app.Status.String(),
		stepValue(app.CurrentStep),
	}, payloadArgs(app)...)
	args = append(args,
		app.RevisionCount,
		app.RevisionNotes,
		app.RejectionReason,
		app.UpdatedAt,
		app.ID.String(),
		expectedStatus.String(),
	)

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update application", zap.String("id", app.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a disappeared row from a lost compare-and-set.
		var current string
		err := r.db.Executor(ctx).QueryRowContext(ctx,
			`SELECT status FROM applications WHERE id = ?`, app.ID.String()).Scan(&current)
		if err == sql.ErrNoRows {
			return apperr.NotFoundf("application %s", app.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to check application status: %w", err)
		}
		return apperr.Conflictf("application %s moved from %s to %s", app.ID, expectedStatus, current)
	}

	return nil
}

// List retrieves a filtered page of applications plus the total count.
func (r *ApplicationRepository) List(ctx context.Context, filter port.ListFilter) ([]*entity.Application, int64, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind.String())
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.ApplicantID != "" {
		conditions = append(conditions, "applicant_id = ?")
		args = append(args, filter.ApplicantID)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM applications` + where
	if err := r.db.Executor(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query := `SELECT ` + applicationColumns + ` FROM applications` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		r.logger.Error("Failed to list applications", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*entity.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, total, rows.Err()
}

func payloadArgs(app *entity.Application) []interface{} {
	args := []interface{}{
		app.Payload.Amount.String(),
		app.Payload.TenorMonths,
		string(app.Payload.LoanType),
		app.Payload.Purpose,
		app.Payload.DepositRef,
		app.Payload.EarlyWithdrawal,
	}

	c := app.Computed
	if c == nil {
		return append(args, nil, nil, nil, nil, nil, nil, nil, nil, false)
	}
	return append(args,
		c.AnnualRatePercent.String(),
		c.MonthlyInstallment.String(),
		c.TotalRepayment.String(),
		c.InterestAmount.String(),
		c.ShopMarginAmount.String(),
		c.MaturityAmount.String(),
		c.PenaltyAmount.String(),
		c.NetAmount.String(),
		c.PenaltyClamped,
	)
}

func stepValue(step *entity.Step) interface{} {
	if step == nil {
		return nil
	}
	return step.String()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*entity.Application, error) {
	var (
		app             entity.Application
		idStr           string
		kind            string
		status          string
		currentStep     sql.NullString
		amount          string
		loanType        string
		annualRate      sql.NullString
		monthlyInst     sql.NullString
		totalRepay      sql.NullString
		interestAmt     sql.NullString
		shopMargin      sql.NullString
		maturityAmt     sql.NullString
		penaltyAmt      sql.NullString
		netAmt          sql.NullString
		penaltyClamped  bool
	)

	err := row.Scan(
		&idStr, &kind, &app.ApplicantID, &status, &currentStep,
		&amount, &app.Payload.TenorMonths, &loanType, &app.Payload.Purpose,
		&app.Payload.DepositRef, &app.Payload.EarlyWithdrawal,
		&annualRate, &monthlyInst, &totalRepay, &interestAmt,
		&shopMargin, &maturityAmt, &penaltyAmt, &netAmt, &penaltyClamped,
		&app.RevisionCount, &app.RevisionNotes, &app.RejectionReason,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid application id %q: %w", idStr, err)
	}
	app.Kind = entity.Kind(kind)
	app.Status = entity.Status(status)
	app.Payload.LoanType = entity.LoanType(loanType)

	if currentStep.Valid {
		step := entity.Step(currentStep.String)
		app.CurrentStep = &step
	}

	app.Payload.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	if annualRate.Valid {
		computed := &entity.ComputedFields{PenaltyClamped: penaltyClamped}
		for _, field := range []struct {
			src sql.NullString
			dst *decimal.Decimal
		}{
			{annualRate, &computed.AnnualRatePercent},
			{monthlyInst, &computed.MonthlyInstallment},
			{totalRepay, &computed.TotalRepayment},
			{interestAmt, &computed.InterestAmount},
			{shopMargin, &computed.ShopMarginAmount},
			{maturityAmt, &computed.MaturityAmount},
			{penaltyAmt, &computed.PenaltyAmount},
			{netAmt, &computed.NetAmount},
		} {
			if !field.src.Valid {
				continue
			}
			d, err := decimal.NewFromString(field.src.String)
			if err != nil {
				return nil, fmt.Errorf("invalid computed value %q: %w", field.src.String, err)
			}
			*field.dst = d
		}
		app.Computed = computed
	}

	return &app, nil
}
