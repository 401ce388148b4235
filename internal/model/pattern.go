package model

import (
	"fmt"
	"time"
)

// Pattern is a learned association between a bank account, a counterparty
// verb, and the bookkeeping fields historically assigned to that
// combination. Patterns are keyed by (tenant, bank account, verb company)
// and are only ever created or updated, never deleted.
type Pattern struct {
	LastSeen              time.Time `json:"last_seen"`
	Tenant                string    `json:"tenant"`
	BankAccount           string    `json:"bank_account"`
	Verb                  string    `json:"verb"`
	VerbCompany           string    `json:"verb_company"`
	VerbReference         string    `json:"verb_reference,omitempty"`
	ReferenceNumber       string    `json:"reference_number"`
	OppositeDebitAccount  string    `json:"opposite_debit_account,omitempty"`
	OppositeCreditAccount string    `json:"opposite_credit_account,omitempty"`
	SampleDescription     string    `json:"sample_description"`
	LastAmount            float64   `json:"last_amount"`
	Confidence            float64   `json:"confidence"`
	Occurrences           int       `json:"occurrences"`
	IsCompound            bool      `json:"is_compound"`
}

// Key returns the unique identity of the pattern within its tenant.
func (p *Pattern) Key() string {
	return fmt.Sprintf("%s|%s|%s", p.Tenant, p.BankAccount, p.VerbCompany)
}

// ComputeConfidence derives a confidence score from how consistently the
// observed transactions agreed with the dominant label. A single confirmed
// transaction trivially agrees with itself and scores 1.0; conflicting
// labels within the same key pull the score down proportionally.
func ComputeConfidence(agreeing, total int) float64 {
	if total <= 0 || agreeing <= 0 {
		return 0
	}
	if agreeing >= total {
		return 1.0
	}
	return float64(agreeing) / float64(total)
}
