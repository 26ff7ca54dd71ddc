package operators

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/store"
)

// Operator is a dashboard account.
type Operator struct {
	ID           string     `json:"id"`
	AdminID      string     `json:"admin_id"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

type OperatorsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewOperatorsRepository(db *store.DB, log *zap.Logger) *OperatorsRepository {
	return &OperatorsRepository{db: db, log: log}
}

func (r *OperatorsRepository) Create(ctx context.Context, op *Operator) (*Operator, error) {
	query := `
		INSERT INTO operators (admin_id, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.Pool.QueryRow(ctx, query, op.AdminID, op.PasswordHash).Scan(&op.ID, &op.CreatedAt)
	if err != nil {
		return nil, err
	}
	return op, nil
}

// GetByAdminID returns nil, nil when no operator matches.
func (r *OperatorsRepository) GetByAdminID(ctx context.Context, adminID string) (*Operator, error) {
	query := `
		SELECT id, admin_id, password_hash, created_at, last_login_at
		FROM operators
		WHERE admin_id = $1`

	op := &Operator{}
	err := r.db.Pool.QueryRow(ctx, query, adminID).Scan(
		&op.ID, &op.AdminID, &op.PasswordHash, &op.CreatedAt, &op.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return op, nil
}

func (r *OperatorsRepository) TouchLogin(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `UPDATE operators SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *OperatorsRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM operators`).Scan(&count)
	return count, err
}
