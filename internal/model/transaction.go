// Package model defines the core data structures for the autoledger engine.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Transaction represents a single bank transaction as imported from a
// statement or entered by a bookkeeper. It is read-only input to the
// learning engine: discovery and prediction never mutate stored rows.
type Transaction struct {
	Date            time.Time
	ID              string
	Tenant          string
	Description     string // Raw free-text statement description
	DebitAccount    string // Ledger account code; empty means "to predict"
	CreditAccount   string // Ledger account code; empty means "to predict"
	Reference       string // Bookkeeping reference code, may be empty
	StatementNumber string // Bank protocol sequence, duplicate detection only
	SequenceNumber  string // Position within the statement, duplicate detection only
	Amount          float64
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%.2f:%s:%s:%s",
		t.Tenant,
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.StatementNumber,
		t.SequenceNumber)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// HasCompleteLabel reports whether the transaction carries enough
// bookkeeping detail to learn from: a reference plus at least one
// account side.
func (t *Transaction) HasCompleteLabel() bool {
	if strings.TrimSpace(t.Reference) == "" {
		return false
	}
	return t.DebitAccount != "" || t.CreditAccount != ""
}
