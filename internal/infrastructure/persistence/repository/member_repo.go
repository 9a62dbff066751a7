package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/adityahw/koperasi-backoffice/internal/application/port"
	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
	"github.com/adityahw/koperasi-backoffice/internal/infrastructure/persistence/sqlite"
)

// MemberRepository implements port.RoleProvider over the member_roles
// table. An unknown actor simply resolves to an empty role set; the
// authorization gate rejects it downstream.
type MemberRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewMemberRepository creates a new member repository.
func NewMemberRepository(db *sqlite.DB, logger *zap.Logger) port.RoleProvider {
	return &MemberRepository{
		db:     db,
		logger: logger,
	}
}

// RolesOf resolves the role set of an actor.
func (r *MemberRepository) RolesOf(ctx context.Context, actorID string) ([]entity.Role, error) {
	query := `SELECT role FROM member_roles WHERE member_id = ?`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, actorID)
	if err != nil {
		r.logger.Error("Failed to resolve roles", zap.String("actor_id", actorID), zap.Error(err))
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}
	defer rows.Close()

	var roles []entity.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, entity.Role(role))
	}

	return roles, rows.Err()
}
