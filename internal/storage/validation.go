// Package storage provides the data persistence layer for the autoledger engine.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/autoledger/autoledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPattern     = errors.New("invalid pattern")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Tenant == "" {
		return fmt.Errorf("%w: missing tenant", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	return nil
}

// validatePatterns validates a slice of patterns before upsert.
func validatePatterns(patterns []model.Pattern) error {
	if patterns == nil {
		return fmt.Errorf("%w: patterns", ErrNilParameter)
	}

	for i, p := range patterns {
		if err := validatePattern(&p); err != nil {
			return fmt.Errorf("pattern at index %d: %w", i, err)
		}
	}
	return nil
}

// validatePattern validates a single pattern.
func validatePattern(p *model.Pattern) error {
	if p == nil {
		return fmt.Errorf("%w: pattern", ErrNilParameter)
	}
	if p.Tenant == "" {
		return fmt.Errorf("%w: missing tenant", ErrInvalidPattern)
	}
	if p.BankAccount == "" {
		return fmt.Errorf("%w: missing bank account", ErrInvalidPattern)
	}
	if p.VerbCompany == "" {
		return fmt.Errorf("%w: missing verb company", ErrInvalidPattern)
	}
	if p.Occurrences < 0 {
		return fmt.Errorf("%w: negative occurrences", ErrInvalidPattern)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence out of range", ErrInvalidPattern)
	}
	return nil
}
