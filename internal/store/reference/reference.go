package reference

import (
	"context"

	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/report/channel"
	"github.com/samirwankhede/channel-booking-reports/internal/store"
)

// ReferenceRepository reads the externally maintained channel reference table.
type ReferenceRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewReferenceRepository(db *store.DB, log *zap.Logger) *ReferenceRepository {
	return &ReferenceRepository{db: db, log: log}
}

// Channels returns the sales-channel rows of common_code. Rows whose code id is
// not numeric cannot match an order's channel index and are skipped.
func (r *ReferenceRepository) Channels(ctx context.Context) ([]channel.ReferenceEntry, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT idx, code_id::text::bigint, COALESCE(code_name, '')
		FROM common_code
		WHERE parent_idx = 1 AND code_id::text ~ '^[0-9]+$'
		ORDER BY idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []channel.ReferenceEntry
	for rows.Next() {
		var e channel.ReferenceEntry
		if err := rows.Scan(&e.RowID, &e.Index, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
