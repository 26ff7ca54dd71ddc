package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	jwtMiddleware "github.com/samirwankhede/channel-booking-reports/internal/middleware"
	"github.com/samirwankhede/channel-booking-reports/internal/store/operators"
)

// Operators is the account store behind login.
type Operators interface {
	GetByAdminID(ctx context.Context, adminID string) (*operators.Operator, error)
	TouchLogin(ctx context.Context, id string) error
}

type AuthService struct {
	log       *zap.Logger
	operators Operators
	secret    string
	ttl       time.Duration
	now       func() time.Time
}

type LoginRequest struct {
	AdminID  string `json:"admin_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session is an issued operator session.
type Session struct {
	Token      string    `json:"token"`
	OperatorID string    `json:"operator_id"`
	AdminID    string    `json:"admin_id"`
	Expires    time.Time `json:"expires"`
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
)

func NewAuthService(log *zap.Logger, ops Operators, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		log:       log.With(zap.String("category", "auth")),
		operators: ops,
		secret:    secret,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *AuthService) TTL() time.Duration { return s.ttl }

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	op, err := s.operators.GetByAdminID(ctx, req.AdminID)
	if err != nil {
		return nil, fmt.Errorf("failed to load operator: %w", err)
	}
	if op == nil || op.PasswordHash == "" {
		s.log.Warn("login rejected", zap.String("admin_id", req.AdminID), zap.String("reason", "unknown operator"))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Warn("login rejected", zap.String("admin_id", req.AdminID), zap.String("reason", "bad password"))
		return nil, ErrInvalidCredentials
	}

	token, err := jwtMiddleware.Issue(s.secret, op.ID, op.AdminID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.operators.TouchLogin(ctx, op.ID); err != nil {
		s.log.Warn("failed to record login time", zap.String("operator_id", op.ID), zap.Error(err))
	}

	s.log.Info("login", zap.String("admin_id", op.AdminID), zap.String("operator_id", op.ID))
	return &Session{
		Token:      token,
		OperatorID: op.ID,
		AdminID:    op.AdminID,
		Expires:    s.now().Add(s.ttl),
	}, nil
}

// Restore validates a token presented by a returning browser.
func (s *AuthService) Restore(token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	claims, err := jwtMiddleware.Parse(s.secret, token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	sess := &Session{Token: token, OperatorID: claims.OperatorID, AdminID: claims.AdminID}
	if claims.ExpiresAt != nil {
		sess.Expires = claims.ExpiresAt.Time
	}
	s.log.Info("session restored", zap.String("admin_id", sess.AdminID))
	return sess, nil
}

func (s *AuthService) Logout(adminID string) {
	s.log.Info("logout", zap.String("admin_id", adminID))
}
