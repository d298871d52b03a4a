package postgres

import (
	"context"
	"fmt"

	"flatfox-parser-service/internal/contextkeys"
	"flatfox-parser-service/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KnownListingsAdapter хранит отпечатки уже виденных объявлений в PostgreSQL.
// Таблица known_listings: fingerprint TEXT PRIMARY KEY, first_seen_at / last_seen_at TIMESTAMPTZ.
type KnownListingsAdapter struct {
	pool *pgxpool.Pool
}

func NewKnownListingsAdapter(pool *pgxpool.Pool) (*KnownListingsAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres adapter: pool cannot be nil")
	}
	return &KnownListingsAdapter{pool: pool}, nil
}

// FilterNew возвращает отпечатки, которых еще нет в хранилище.
// Порядок входного среза сохраняется.
func (a *KnownListingsAdapter) FilterNew(ctx context.Context, fingerprints []string) ([]string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{"component": "KnownListingsAdapter"})

	if len(fingerprints) == 0 {
		return nil, nil
	}

	query := `SELECT fingerprint FROM known_listings WHERE fingerprint = ANY($1)`

	rows, err := a.pool.Query(ctx, query, fingerprints)
	if err != nil {
		adapterLogger.Error("Failed to query known fingerprints", err, nil)
		return nil, fmt.Errorf("postgres adapter: failed to query known fingerprints: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{}, len(fingerprints))
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("postgres adapter: failed to scan fingerprint: %w", err)
		}
		known[fp] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres adapter: rows iteration failed: %w", err)
	}

	var fresh []string
	for _, fp := range fingerprints {
		if _, ok := known[fp]; !ok {
			fresh = append(fresh, fp)
		}
	}

	adapterLogger.Debug("Filtered fingerprints against seen-store", port.Fields{
		"checked": len(fingerprints),
		"new":     len(fresh),
	})

	return fresh, nil
}

// MarkSeen фиксирует отпечатки как виденные. Повторная фиксация только
// обновляет last_seen_at, поэтому операция идемпотентна.
func (a *KnownListingsAdapter) MarkSeen(ctx context.Context, fingerprints []string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{"component": "KnownListingsAdapter"})

	if len(fingerprints) == 0 {
		return nil
	}

	query := `
		INSERT INTO known_listings (fingerprint, first_seen_at, last_seen_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (fingerprint)
		DO UPDATE SET last_seen_at = NOW();
	`

	batch := &pgx.Batch{}
	for _, fp := range fingerprints {
		batch.Queue(query, fp)
	}

	results := a.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range fingerprints {
		if _, err := results.Exec(); err != nil {
			adapterLogger.Error("Failed to upsert fingerprint", err, nil)
			return fmt.Errorf("postgres adapter: failed to upsert fingerprint: %w", err)
		}
	}

	adapterLogger.Debug("Marked fingerprints as seen", port.Fields{"count": len(fingerprints)})
	return nil
}
