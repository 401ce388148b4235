package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/autoledger/autoledger/internal/common"
	"github.com/autoledger/autoledger/internal/model"
)

// UpsertPatterns inserts or updates learned patterns. Each pattern's
// Occurrences field carries the delta contributed by the current
// discovery run; conflicting keys accumulate the delta onto the stored
// counter so concurrent runs never lose increments. Stored patterns are
// never deleted and occurrence counters never reset.
func (s *SQLiteStorage) UpsertPatterns(ctx context.Context, patterns []model.Pattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePatterns(patterns); err != nil {
		return err
	}
	if len(patterns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range patterns {
		if err := s.upsertPatternTx(ctx, tx, &patterns[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStorage) upsertPatternTx(ctx context.Context, tx *sql.Tx, p *model.Pattern) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO patterns (
			tenant, bank_account, verb_company, verb, verb_reference,
			is_compound, reference_number, opposite_debit_account,
			opposite_credit_account, occurrences, confidence, last_seen,
			last_amount, sample_description, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(tenant, bank_account, verb_company) DO UPDATE SET
			verb = excluded.verb,
			verb_reference = excluded.verb_reference,
			is_compound = excluded.is_compound,
			reference_number = excluded.reference_number,
			opposite_debit_account = excluded.opposite_debit_account,
			opposite_credit_account = excluded.opposite_credit_account,
			occurrences = patterns.occurrences + excluded.occurrences,
			confidence = excluded.confidence,
			last_seen = MAX(patterns.last_seen, excluded.last_seen),
			last_amount = excluded.last_amount,
			sample_description = excluded.sample_description,
			updated_at = CURRENT_TIMESTAMP
	`,
		p.Tenant, p.BankAccount, p.VerbCompany, p.Verb, p.VerbReference,
		p.IsCompound, p.ReferenceNumber, p.OppositeDebitAccount,
		p.OppositeCreditAccount, p.Occurrences, p.Confidence, p.LastSeen,
		p.LastAmount, p.SampleDescription,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pattern %s: %w", p.Key(), err)
	}

	return nil
}

// ListPatterns returns all patterns for a tenant, most recently seen
// first, then by occurrence count descending. The ordering keeps
// downstream conflict resolution deterministic.
func (s *SQLiteStorage) ListPatterns(ctx context.Context, tenant string) ([]model.Pattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenant, "tenant"); err != nil {
		return nil, err
	}
	return s.listPatternsTx(ctx, s.db, tenant)
}

func (s *SQLiteStorage) listPatternsTx(ctx context.Context, q queryable, tenant string) ([]model.Pattern, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT tenant, bank_account, verb_company, verb, verb_reference,
		       is_compound, reference_number, opposite_debit_account,
		       opposite_credit_account, occurrences, confidence, last_seen,
		       last_amount, sample_description
		FROM patterns
		WHERE tenant = ?
		ORDER BY last_seen DESC, occurrences DESC
	`, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.Pattern
	for rows.Next() {
		p, scanErr := scanPattern(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}

// GetPattern retrieves a single pattern by its key triple.
func (s *SQLiteStorage) GetPattern(ctx context.Context, tenant, bankAccount, verbCompany string) (*model.Pattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	for _, check := range []struct{ value, name string }{
		{tenant, "tenant"},
		{bankAccount, "bankAccount"},
		{verbCompany, "verbCompany"},
	} {
		if err := validateString(check.value, check.name); err != nil {
			return nil, err
		}
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT tenant, bank_account, verb_company, verb, verb_reference,
		       is_compound, reference_number, opposite_debit_account,
		       opposite_credit_account, occurrences, confidence, last_seen,
		       last_amount, sample_description
		FROM patterns
		WHERE tenant = ? AND bank_account = ? AND verb_company = ?
	`, tenant, bankAccount, verbCompany)

	p, err := scanPattern(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPattern(row scanner) (model.Pattern, error) {
	var p model.Pattern
	var verbRef, oppDebit, oppCredit, sample sql.NullString

	err := row.Scan(
		&p.Tenant, &p.BankAccount, &p.VerbCompany, &p.Verb, &verbRef,
		&p.IsCompound, &p.ReferenceNumber, &oppDebit, &oppCredit,
		&p.Occurrences, &p.Confidence, &p.LastSeen, &p.LastAmount, &sample,
	)
	if err == sql.ErrNoRows {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan pattern: %w", err)
	}

	p.VerbReference = verbRef.String
	p.OppositeDebitAccount = oppDebit.String
	p.OppositeCreditAccount = oppCredit.String
	p.SampleDescription = sample.String
	return p, nil
}
