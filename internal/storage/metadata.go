package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/autoledger/autoledger/internal/common"
	"github.com/autoledger/autoledger/internal/model"
)

// GetAnalysisMetadata returns the state of the most recent discovery run
// for a tenant, or common.ErrNotFound when no run has happened yet.
func (s *SQLiteStorage) GetAnalysisMetadata(ctx context.Context, tenant string) (*model.AnalysisMetadata, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenant, "tenant"); err != nil {
		return nil, err
	}

	var meta model.AnalysisMetadata
	var rangeStart, rangeEnd, lastTxn sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT tenant, analyzed_at, range_start, range_end, last_transaction,
		       transactions_analyzed, patterns_discovered
		FROM analysis_metadata
		WHERE tenant = ?
	`, tenant).Scan(
		&meta.Tenant, &meta.AnalyzedAt, &rangeStart, &rangeEnd, &lastTxn,
		&meta.TransactionsAnalyzed, &meta.PatternsDiscovered,
	)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis metadata: %w", err)
	}

	meta.RangeStart = rangeStart.Time
	meta.RangeEnd = rangeEnd.Time
	meta.LastTransaction = lastTxn.Time
	return &meta, nil
}

// SaveAnalysisMetadata records the outcome of a discovery run. The
// covered transaction window only ever widens; counters accumulate
// across runs.
func (s *SQLiteStorage) SaveAnalysisMetadata(ctx context.Context, meta *model.AnalysisMetadata) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("%w: meta", ErrNilParameter)
	}
	if err := validateString(meta.Tenant, "meta.Tenant"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_metadata (
			tenant, analyzed_at, range_start, range_end, last_transaction,
			transactions_analyzed, patterns_discovered
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant) DO UPDATE SET
			analyzed_at = excluded.analyzed_at,
			range_start = MIN(analysis_metadata.range_start, excluded.range_start),
			range_end = MAX(analysis_metadata.range_end, excluded.range_end),
			last_transaction = MAX(analysis_metadata.last_transaction, excluded.last_transaction),
			transactions_analyzed = analysis_metadata.transactions_analyzed + excluded.transactions_analyzed,
			patterns_discovered = excluded.patterns_discovered
	`,
		meta.Tenant, meta.AnalyzedAt, meta.RangeStart, meta.RangeEnd,
		meta.LastTransaction, meta.TransactionsAnalyzed, meta.PatternsDiscovered,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis metadata: %w", err)
	}

	return nil
}
