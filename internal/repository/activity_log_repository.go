package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/query"
)

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository returns a Postgres-backed implementation.
// Only Append writes; the trail is never updated or deleted.
func NewActivityLogRepository(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

func (r *activityLogRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const q = `
        INSERT INTO activity_log (user_id, action, entity_type, entity_id, changes, metadata)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, logged_at`
	return r.pool.QueryRow(ctx, q,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Changes,
		entry.Metadata,
	).Scan(&entry.ID, &entry.Timestamp)
}

func (r *activityLogRepository) List(ctx context.Context, filter query.Expr, page query.PageRequest) ([]domain.ActivityLogEntry, int, error) {
	args := []any{}
	where := compileFilter(filter, activityColumns, &args)

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM activity_log WHERE %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
        SELECT id, user_id, action, entity_type, entity_id, changes, metadata, logged_at
        FROM activity_log WHERE %s ORDER BY logged_at DESC LIMIT %d OFFSET %d`,
		where, page.Limit, page.Skip)
	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries, err := scanActivityEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *activityLogRepository) ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.ActivityLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, user_id, action, entity_type, entity_id, changes, metadata, logged_at
        FROM activity_log WHERE entity_type=$1 AND entity_id=$2 ORDER BY logged_at DESC`,
		entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityEntries(rows)
}

func scanActivityEntries(rows pgx.Rows) ([]domain.ActivityLogEntry, error) {
	var result []domain.ActivityLogEntry
	for rows.Next() {
		var entry domain.ActivityLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Changes,
			&entry.Metadata,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
