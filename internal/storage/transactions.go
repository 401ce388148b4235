package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/autoledger/autoledger/internal/common"
	"github.com/autoledger/autoledger/internal/model"
	"github.com/autoledger/autoledger/internal/service"
)

// SaveTransactions stores imported transactions. Duplicates (by content
// hash, which covers the bank protocol sequence pair) are skipped
// silently so re-importing the same statement is harmless.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, tenant, hash, date, description, debit_account,
			credit_account, reference, statement_number, sequence_number, amount
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		txn := &transactions[i]
		if _, err := stmt.ExecContext(ctx,
			txn.ID, txn.Tenant, txn.GenerateHash(), txn.Date, txn.Description,
			txn.DebitAccount, txn.CreditAccount, txn.Reference,
			txn.StatementNumber, txn.SequenceNumber, txn.Amount,
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactions returns a tenant's transactions matching the filter,
// ordered by date ascending.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, tenant string, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenant, "tenant"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: %v after %v", ErrInvalidDateRange, filter.StartDate, filter.EndDate)
	}

	query := `
		SELECT id, tenant, date, description, debit_account, credit_account,
		       reference, statement_number, sequence_number, amount
		FROM transactions
		WHERE tenant = ?`
	args := []any{tenant}

	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}
	query += " ORDER BY date ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, tenant, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant, date, description, debit_account, credit_account,
		       reference, statement_number, sequence_number, amount
		FROM transactions
		WHERE tenant = ? AND id = ?
	`, tenant, id)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetTransactionCount returns the number of stored transactions for a tenant.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context, tenant string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE tenant = ?`, tenant,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var txn model.Transaction
	var debit, credit, reference, stmtNo, seqNo sql.NullString

	err := row.Scan(
		&txn.ID, &txn.Tenant, &txn.Date, &txn.Description,
		&debit, &credit, &reference, &stmtNo, &seqNo, &txn.Amount,
	)
	if err == sql.ErrNoRows {
		return txn, err
	}
	if err != nil {
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.DebitAccount = debit.String
	txn.CreditAccount = credit.String
	txn.Reference = reference.String
	txn.StatementNumber = stmtNo.String
	txn.SequenceNumber = seqNo.String
	return txn, nil
}
