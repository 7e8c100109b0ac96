package repository

import (
	"context"
	"time"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultDecisionLimit = 20

type DecisionRepository struct {
	db dbtx
}

func NewDecisionRepository(pool *pgxpool.Pool) *DecisionRepository {
	return &DecisionRepository{db: pool}
}

func NewDecisionRepositoryWithTx(tx pgx.Tx) *DecisionRepository {
	return &DecisionRepository{db: tx}
}

func (r *DecisionRepository) Create(ctx context.Context, rec *domain.DecisionRecord) error {
	missing := rec.MissingInfo
	if missing == nil {
		missing = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO route_decisions (id, request_id, question, route, missing_info, fallback, provider, knowledge_chars, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.RequestID, rec.Question, string(rec.Route), missing, rec.Fallback,
		rec.Provider, rec.KnowledgeChars, rec.DurationMS, rec.CreatedAt,
	)
	return err
}

// List returns decisions newest first.
func (r *DecisionRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.DecisionRecord], error) {
	if limit <= 0 {
		limit = defaultDecisionLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, request_id, question, route, missing_info, fallback, provider, knowledge_chars, duration_ms, created_at
			 FROM route_decisions
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, request_id, question, route, missing_info, fallback, provider, knowledge_chars, duration_ms, created_at
			 FROM route_decisions
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDecisionRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &pagination.PageResult[*domain.DecisionRecord]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

// DeleteOlderThan removes decisions created before cutoff and returns how many went.
func (r *DecisionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM route_decisions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanDecisionRows(rows pgx.Rows) ([]*domain.DecisionRecord, error) {
	items := make([]*domain.DecisionRecord, 0)
	for rows.Next() {
		var rec domain.DecisionRecord
		var route string
		if err := rows.Scan(
			&rec.ID, &rec.RequestID, &rec.Question, &route, &rec.MissingInfo, &rec.Fallback,
			&rec.Provider, &rec.KnowledgeChars, &rec.DurationMS, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Route = domain.Route(route)
		items = append(items, &rec)
	}
	return items, rows.Err()
}
