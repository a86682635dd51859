package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

type OperatorStore interface {
	FindByUsername(ctx context.Context, username string) (models.Operator, error)
	Upsert(ctx context.Context, op models.Operator) error
}

// Claims is the operator token payload.
type Claims struct {
	OperatorID int64  `json:"operator_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Operators OperatorStore
	Secret    []byte
	TTL       time.Duration
	Now       func() time.Time
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login checks the operator's bcrypt hash and returns a signed HS256 token.
func (s AuthService) Login(ctx context.Context, username, password string) (string, models.Operator, error) {
	op, err := s.Operators.FindByUsername(ctx, username)
	if domain.IsNotFound(err) {
		return "", models.Operator{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", models.Operator{}, err
	}
	if !strings.EqualFold(op.Status, "active") {
		return "", models.Operator{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", models.Operator{}, ErrInvalidCredentials
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		OperatorID: op.ID,
		Role:       op.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", models.Operator{}, domain.InternalError{Msg: "could not sign token", Err: err}
	}
	utils.LogEvent(utils.RequestID(ctx), "auth", "login", "operator="+op.Username)
	return signed, op, nil
}

// ParseToken verifies signature and expiry.
func (s AuthService) ParseToken(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return Claims{}, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// EnsureOperator creates or resets an operator account; used to seed the first admin.
func (s AuthService) EnsureOperator(ctx context.Context, username, password, role string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.ValidationError{Field: "operator", Msg: "username and password are required"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.InternalError{Msg: "could not hash password", Err: err}
	}
	return s.Operators.Upsert(ctx, models.Operator{
		Username:     username,
		Name:         username,
		PasswordHash: string(hash),
		Role:         utils.FirstNonEmpty(role, domain.RoleClerk),
	})
}
