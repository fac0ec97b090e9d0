package churn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"sdkchurn/internal/gateway/entity"
)

// SQLStore runs the churn queries against the sdk / app / app_sdk tables.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Open connects with the dialect's driver and pings once. SQLite files are
// opened read-only.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%s dsn is required", dialect)
	}
	if dialect == SQLite && !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dsn = "file:" + dsn + "?mode=ro"
	}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return NewSQLStore(db, dialect), nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) ListSDKs(ctx context.Context) ([]entity.Sdk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM sdk ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sdks: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Sdk, 0, 64)
	for rows.Next() {
		var sdk entity.Sdk
		if err := rows.Scan(&sdk.ID, &sdk.Name); err != nil {
			return nil, fmt.Errorf("scan sdk: %w", err)
		}
		out = append(out, sdk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sdks: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Aggregate(ctx context.Context, ids []entity.SdkID) ([]entity.ChurnEdge, error) {
	if len(ids) == 0 {
		return nil, ErrNoSDKs
	}
	args := make([]any, 0, 2*len(ids))
	for range 2 {
		for _, id := range ids {
			args = append(args, int(id))
		}
	}

	// Retention: distinct apps that still ship the sdk.
	// Migration: distinct apps that dropped the source and ship another sdk.
	// Destinations are deliberately left unconstrained.
	query := fmt.Sprintf(`
SELECT sdk_id AS from_sdk, sdk_id AS to_sdk, COUNT(DISTINCT app_id) AS count
FROM app_sdk
WHERE sdk_id IN (%s) AND installed = TRUE
GROUP BY sdk_id

UNION ALL

SELECT a.sdk_id AS from_sdk, b.sdk_id AS to_sdk, COUNT(DISTINCT b.app_id) AS count
FROM app_sdk a
JOIN app_sdk b ON a.app_id = b.app_id AND a.sdk_id != b.sdk_id
WHERE a.sdk_id IN (%s) AND a.installed = FALSE AND b.installed = TRUE
GROUP BY a.sdk_id, b.sdk_id`,
		s.dialect.placeholders(len(ids), 0),
		s.dialect.placeholders(len(ids), len(ids)),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate churn: %w", err)
	}
	defer rows.Close()

	out := make([]entity.ChurnEdge, 0, len(ids)*len(ids))
	for rows.Next() {
		var e entity.ChurnEdge
		if err := rows.Scan(&e.From, &e.To, &e.Count); err != nil {
			return nil, fmt.Errorf("scan churn edge: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate churn: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Apps(ctx context.Context, p entity.Pair) ([]entity.App, error) {
	var (
		query string
		args  []any
	)
	if p.IsRetention() {
		query = fmt.Sprintf(`
SELECT DISTINCT c.id, c.name, COALESCE(c.seller_name, ''), COALESCE(c.artwork_large_url, '')
FROM app_sdk a
JOIN app c ON c.id = a.app_id
WHERE a.sdk_id = %s AND a.installed = TRUE`, s.dialect.placeholder(1))
		args = []any{int(p.From)}
	} else {
		query = fmt.Sprintf(`
SELECT DISTINCT c.id, c.name, COALESCE(c.seller_name, ''), COALESCE(c.artwork_large_url, '')
FROM app_sdk a
JOIN app_sdk b ON b.app_id = a.app_id
JOIN app c ON c.id = a.app_id
WHERE a.sdk_id = %s AND a.installed = FALSE
  AND b.sdk_id = %s AND b.installed = TRUE`, s.dialect.placeholder(1), s.dialect.placeholder(2))
		args = []any{int(p.From), int(p.To)}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list apps %s: %w", p, err)
	}
	defer rows.Close()

	out := make([]entity.App, 0, 32)
	for rows.Next() {
		var a entity.App
		if err := rows.Scan(&a.ID, &a.Name, &a.SellerName, &a.ArtworkLargeURL); err != nil {
			return nil, fmt.Errorf("scan app: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list apps %s: %w", p, err)
	}
	return out, nil
}
