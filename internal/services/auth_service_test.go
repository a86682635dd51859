package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOperators map[string]models.Operator

func (m memOperators) FindByUsername(_ context.Context, username string) (models.Operator, error) {
	op, ok := m[username]
	if !ok {
		return models.Operator{}, domain.NotFoundError{Resource: "operator"}
	}
	return op, nil
}

func (m memOperators) Upsert(_ context.Context, op models.Operator) error {
	op.ID = int64(len(m) + 1)
	op.Status = "active"
	m[op.Username] = op
	return nil
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	ops := memOperators{}
	svc := AuthService{Operators: ops, Secret: []byte("test-secret"), TTL: time.Hour}
	require.NoError(t, svc.EnsureOperator(ctx, "admin", "s3cret", domain.RoleAdmin))

	token, op, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, op.Role)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := AuthService{Operators: memOperators{}, Secret: []byte("test-secret")}
	require.NoError(t, svc.EnsureOperator(ctx, "clerk", "pw", ""))

	_, _, err := svc.Login(ctx, "clerk", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, _, err = svc.Login(ctx, "ghost", "pw")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	ctx := context.Background()
	ops := memOperators{}
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := AuthService{Operators: ops, Secret: []byte("test-secret"), TTL: time.Minute, Now: func() time.Time { return issued }}
	require.NoError(t, svc.EnsureOperator(ctx, "admin", "pw", domain.RoleAdmin))
	token, _, err := svc.Login(ctx, "admin", "pw")
	require.NoError(t, err)

	later := svc
	later.Now = func() time.Time { return issued.Add(time.Hour) }
	_, err = later.ParseToken(token)
	assert.Error(t, err)

	other := svc
	other.Secret = []byte("another-secret")
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}
