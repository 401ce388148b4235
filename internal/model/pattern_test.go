package model

import (
	"testing"
	"time"
)

func TestPatternKey(t *testing.T) {
	p := Pattern{
		Tenant:      "acme",
		BankAccount: "1002",
		VerbCompany: "NETFLIX",
	}

	if got, want := p.Key(), "acme|1002|NETFLIX"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestComputeConfidence(t *testing.T) {
	tests := []struct {
		name     string
		agreeing int
		total    int
		want     float64
	}{
		{"single occurrence is fully confident", 1, 1, 1.0},
		{"unanimous repetition", 5, 5, 1.0},
		{"three of four agree", 3, 4, 0.75},
		{"evenly split", 1, 2, 0.5},
		{"zero total", 0, 0, 0},
		{"zero agreeing", 0, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeConfidence(tt.agreeing, tt.total); got != tt.want {
				t.Errorf("ComputeConfidence(%d, %d) = %v, want %v", tt.agreeing, tt.total, got, tt.want)
			}
		})
	}
}

func TestHasCompleteLabel(t *testing.T) {
	base := Transaction{
		ID:          "txn-1",
		Tenant:      "acme",
		Date:        time.Now(),
		Description: "NETFLIX INTERNATIONAL B.V.",
	}

	tests := []struct {
		name      string
		reference string
		debit     string
		credit    string
		want      bool
	}{
		{"reference and debit", "NETFLIX", "4002", "", true},
		{"reference and credit", "NETFLIX", "", "1002", true},
		{"reference and both sides", "NETFLIX", "4002", "1002", true},
		{"missing reference", "", "4002", "1002", false},
		{"whitespace reference", "   ", "4002", "1002", false},
		{"reference without accounts", "NETFLIX", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := base
			txn.Reference = tt.reference
			txn.DebitAccount = tt.debit
			txn.CreditAccount = tt.credit

			if got := txn.HasCompleteLabel(); got != tt.want {
				t.Errorf("HasCompleteLabel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateHash(t *testing.T) {
	txn := Transaction{
		Tenant:          "acme",
		Date:            time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		Description:     "NETFLIX INTERNATIONAL B.V.",
		Amount:          12.99,
		StatementNumber: "3",
		SequenceNumber:  "17",
	}

	first := txn.GenerateHash()
	if first == "" {
		t.Fatal("GenerateHash() returned empty string")
	}
	if second := txn.GenerateHash(); second != first {
		t.Errorf("hash not stable: %q != %q", first, second)
	}

	other := txn
	other.SequenceNumber = "18"
	if other.GenerateHash() == first {
		t.Error("different sequence numbers produced identical hashes")
	}
}
