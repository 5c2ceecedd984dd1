package catalog

import (
	"context"
	"fmt"

	"github.com/granada/granada-os/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Store reads and writes the opportunity catalog. The matching engine only
// consumes its output; all writes come from ingestion and seeding.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListParams filters a catalog listing. QueryEmbedding, when present, orders
// results by vector similarity; otherwise a plain title match applies.
type ListParams struct {
	Query          string
	QueryEmbedding []float32
	Country        string
	Sector         string
	SourceName     string
	MinAmount      float64
	MaxAmount      float64
	VerifiedOnly   bool
	Limit          int
	Offset         int
}

type ListResult struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

const selectCols = `id, title, description, country, sector,
	amount_min, amount_max, currency, source_name, source_url,
	keywords, deadline, is_verified, created_at, updated_at`

func scanOpportunity(scan func(dest ...interface{}) error) (models.Opportunity, error) {
	var o models.Opportunity
	err := scan(
		&o.ID, &o.Title, &o.Description, &o.Country, &o.Sector,
		&o.AmountMin, &o.AmountMax, &o.Currency, &o.SourceName, &o.SourceURL,
		&o.Keywords, &o.Deadline, &o.IsVerified, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// buildListWhere constructs the WHERE clause and args for ListParams. Split
// out so the filter logic is testable without a database.
func buildListWhere(params ListParams) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}
	if params.Country != "" {
		where += fmt.Sprintf(" AND (country = $%d OR country = 'Global')", argIdx)
		args = append(args, params.Country)
		argIdx++
	}
	if params.Sector != "" {
		where += fmt.Sprintf(" AND sector = $%d", argIdx)
		args = append(args, params.Sector)
		argIdx++
	}
	if params.SourceName != "" {
		where += fmt.Sprintf(" AND source_name = $%d", argIdx)
		args = append(args, params.SourceName)
		argIdx++
	}
	if params.MinAmount > 0 {
		where += fmt.Sprintf(" AND amount_max >= $%d", argIdx)
		args = append(args, params.MinAmount)
		argIdx++
	}
	if params.MaxAmount > 0 {
		where += fmt.Sprintf(" AND amount_min <= $%d", argIdx)
		args = append(args, params.MaxAmount)
		argIdx++
	}
	if params.VerifiedOnly {
		where += " AND is_verified = true"
	}

	return where, args
}

func (s *Store) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	where, args := buildListWhere(params)
	argIdx := len(args) + 1

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	sql := fmt.Sprintf("SELECT %s FROM opportunities %s", selectCols, where)
	if len(params.QueryEmbedding) > 0 {
		sql += fmt.Sprintf(`
			ORDER BY
				CASE WHEN embedding IS NULL THEN 1 ELSE 0 END ASC,
				COALESCE(1 - (embedding <=> $%d), -1) DESC,
				updated_at DESC
		`, argIdx)
		args = append(args, pgvector.NewVector(params.QueryEmbedding))
		argIdx++
	} else {
		sql += " ORDER BY updated_at DESC, created_at DESC"
	}

	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	opps := []models.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return &ListResult{
		Opportunities: opps,
		Total:         total,
		Limit:         params.Limit,
		Offset:        params.Offset,
	}, nil
}

// ListAll returns the full catalog for in-process matching. The matching
// engine works over the whole set, so no pagination here.
func (s *Store) ListAll(ctx context.Context) ([]models.Opportunity, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM opportunities ORDER BY created_at ASC", selectCols))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	opps := []models.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return opps, nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Opportunity, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM opportunities WHERE id = $1", selectCols), id)
	o, err := scanOpportunity(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}
	return &o, nil
}

// Upsert inserts an opportunity or refreshes the existing row that shares
// its source URL.
func (s *Store) Upsert(ctx context.Context, o models.Opportunity) error {
	var embedding interface{}
	if len(o.Embedding) > 0 {
		embedding = pgvector.NewVector(o.Embedding)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO opportunities (
			title, description, country, sector, amount_min, amount_max,
			currency, source_name, source_url, keywords, deadline, is_verified, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (source_url) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			country = EXCLUDED.country,
			sector = EXCLUDED.sector,
			amount_min = EXCLUDED.amount_min,
			amount_max = EXCLUDED.amount_max,
			currency = EXCLUDED.currency,
			source_name = EXCLUDED.source_name,
			keywords = EXCLUDED.keywords,
			deadline = EXCLUDED.deadline,
			is_verified = EXCLUDED.is_verified,
			embedding = COALESCE(EXCLUDED.embedding, opportunities.embedding),
			updated_at = NOW()
	`,
		o.Title, o.Description, o.Country, o.Sector, o.AmountMin, o.AmountMax,
		o.Currency, o.SourceName, o.SourceURL, o.Keywords, o.Deadline, o.IsVerified, embedding,
	)
	if err != nil {
		return fmt.Errorf("upsert opportunity: %w", err)
	}
	return nil
}

func (s *Store) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT DISTINCT source_name FROM opportunities WHERE source_name != '' ORDER BY source_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err == nil {
			sources = append(sources, src)
		}
	}
	return sources, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities").Scan(&total)
	stats["total"] = total

	var verified int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities WHERE is_verified = true").Scan(&verified)
	stats["verified"] = verified

	var sources int
	s.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT source_name) FROM opportunities").Scan(&sources)
	stats["sources"] = sources

	sectorCounts := map[string]int{}
	rows, err := s.pool.Query(ctx,
		"SELECT COALESCE(NULLIF(sector, ''), 'Other'), COUNT(*) FROM opportunities GROUP BY 1")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var sector string
			var count int
			if scanErr := rows.Scan(&sector, &count); scanErr == nil {
				sectorCounts[sector] = count
			}
		}
	}
	stats["sector_counts"] = sectorCounts

	return stats, nil
}
