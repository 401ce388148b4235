package storage

import (
	"context"
	"fmt"
)

// ListBankAccounts returns the account codes flagged as bank/cash
// accounts for a tenant.
func (s *SQLiteStorage) ListBankAccounts(ctx context.Context, tenant string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenant, "tenant"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT code FROM bank_accounts WHERE tenant = ? ORDER BY code
	`, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan bank account: %w", err)
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}

// AddBankAccount flags an account code as a bank/cash account for a
// tenant. Re-adding an existing code updates its display name.
func (s *SQLiteStorage) AddBankAccount(ctx context.Context, tenant, code, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(tenant, "tenant"); err != nil {
		return err
	}
	if err := validateString(code, "code"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_accounts (tenant, code, name)
		VALUES (?, ?, ?)
		ON CONFLICT(tenant, code) DO UPDATE SET name = excluded.name
	`, tenant, code, name)
	if err != nil {
		return fmt.Errorf("failed to add bank account: %w", err)
	}

	return nil
}
