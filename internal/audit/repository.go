package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WindowParams selects audit rows. Null fields disable the matching filter;
// a null Limit returns every row.
type WindowParams struct {
	FromAt   pgtype.Timestamptz
	ToAt     pgtype.Timestamptz
	ActorID  pgtype.Int8
	Action   pgtype.Text
	EntityID pgtype.Text
	Offset   int32
	Limit    pgtype.Int4
}

// PGRepository reads audit_logs.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const timelineQuery = `
SELECT a.occurred_at, a.actor_id, COALESCE(u.email, ''), a.action, a.entity, a.entity_id, a.meta
FROM audit_logs a
LEFT JOIN users u ON u.id = a.actor_id
WHERE a.entity = 'user'
  AND ($1::timestamptz IS NULL OR a.occurred_at >= $1)
  AND ($2::timestamptz IS NULL OR a.occurred_at < $2)
  AND ($3::bigint IS NULL OR a.actor_id = $3)
  AND ($4::text IS NULL OR a.action = $4)
  AND ($5::text IS NULL OR a.entity_id = $5)
ORDER BY a.occurred_at DESC, a.id DESC
OFFSET $6
LIMIT $7`

// Window returns audit rows for user entities, newest first.
func (r *PGRepository) Window(ctx context.Context, p WindowParams) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, timelineQuery, p.FromAt, p.ToAt, p.ActorID, p.Action, p.EntityID, p.Offset, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query timeline: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TimelineRow, error) {
		var (
			out  TimelineRow
			meta []byte
		)
		if err := row.Scan(&out.At, &out.ActorID, &out.ActorEmail, &out.Action, &out.Entity, &out.EntityID, &meta); err != nil {
			return TimelineRow{}, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &out.Meta); err != nil {
				return TimelineRow{}, fmt.Errorf("audit: decode meta: %w", err)
			}
		}
		return out, nil
	})
}
