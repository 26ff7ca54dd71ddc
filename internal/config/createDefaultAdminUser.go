package config

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/samirwankhede/channel-booking-reports/internal/store/operators"
)

// CreateDefaultAdmin seeds the configured operator when no operator exists yet.
func CreateDefaultAdmin(ctx context.Context, cfg *Config, repo *operators.OperatorsRepository) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count operators: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if _, err := repo.Create(ctx, &operators.Operator{AdminID: cfg.AdminID, PasswordHash: string(hashedPassword)}); err != nil {
		return fmt.Errorf("failed to create admin operator: %w", err)
	}
	return nil
}
