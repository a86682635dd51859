package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intdb "railway/internal/db"
	"railway/internal/domain"
	"railway/internal/domain/models"
)

type OperatorRepository struct {
	DB *sql.DB
}

func (r OperatorRepository) FindByUsername(ctx context.Context, username string) (models.Operator, error) {
	username = strings.TrimSpace(username)
	if !intdb.HasTable(ctx, r.DB, "operators") {
		return models.Operator{}, domain.NotFoundError{Resource: "operator"}
	}

	sel := func(col, fallback string) string {
		if intdb.HasColumn(ctx, r.DB, "operators", col) {
			return "COALESCE(" + col + ", '" + fallback + "')"
		}
		return "'" + fallback + "'"
	}

	var op models.Operator
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, `+sel("name", "")+`, password_hash, `+sel("role", domain.RoleClerk)+`, `+sel("status", "active")+`
		FROM operators
		WHERE username = ?
		LIMIT 1`, username).Scan(&op.ID, &op.Username, &op.Name, &op.PasswordHash, &op.Role, &op.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Operator{}, domain.NotFoundError{Resource: "operator", Err: err}
	}
	if err != nil {
		return models.Operator{}, domain.StorageError{Op: "operator.find_by_username", Err: err}
	}
	return op, nil
}

// Upsert creates the operator or replaces its password, name and role.
func (r OperatorRepository) Upsert(ctx context.Context, op models.Operator) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO operators (username, name, password_hash, role, status)
		VALUES (?, ?, ?, ?, 'active')
		ON DUPLICATE KEY UPDATE name = VALUES(name), password_hash = VALUES(password_hash), role = VALUES(role)`,
		strings.TrimSpace(op.Username), op.Name, op.PasswordHash, op.Role)
	if err != nil {
		return domain.StorageError{Op: "operator.upsert", Err: err}
	}
	return nil
}
