package storage

import (
	"context"
	"testing"
	"time"

	"github.com/autoledger/autoledger/internal/service"
)

func TestSaveTransactionsAndQuery(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions("acme", 5)
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("SaveTransactions failed: %v", err)
	}

	got, err := store.GetTransactions(ctx, "acme", service.TransactionFilter{})
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d transactions, want 5", len(got))
	}

	// Date ascending ordering.
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date) {
			t.Errorf("transactions not ordered by date: %v before %v", got[i].Date, got[i-1].Date)
		}
	}
}

func TestSaveTransactionsDeduplicates(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions("acme", 3)
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	// Re-importing the same statement must be harmless.
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	count, err := store.GetTransactionCount(ctx, "acme")
	if err != nil {
		t.Fatalf("GetTransactionCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestGetTransactionsDateWindow(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions("acme", 10)
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("SaveTransactions failed: %v", err)
	}

	start := txns[4].Date
	end := txns[7].Date
	got, err := store.GetTransactions(ctx, "acme", service.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("got %d transactions in window, want 4", len(got))
	}
}

func TestGetTransactionsInvalidWindow(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	_, err := store.GetTransactions(context.Background(), "acme", service.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err == nil {
		t.Fatal("expected error for inverted date range")
	}
}

func TestGetTransactionByID(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions("acme", 1)
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("SaveTransactions failed: %v", err)
	}

	got, err := store.GetTransactionByID(ctx, "acme", txns[0].ID)
	if err != nil {
		t.Fatalf("GetTransactionByID failed: %v", err)
	}
	if got.Description != txns[0].Description {
		t.Errorf("Description = %q, want %q", got.Description, txns[0].Description)
	}
	if got.Reference != "NETFLIX" {
		t.Errorf("Reference = %q, want NETFLIX", got.Reference)
	}
}

func TestBankAccounts(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.AddBankAccount(ctx, "acme", "1002", "Business checking"); err != nil {
		t.Fatalf("AddBankAccount failed: %v", err)
	}
	if err := store.AddBankAccount(ctx, "acme", "1010", "Savings"); err != nil {
		t.Fatalf("AddBankAccount failed: %v", err)
	}
	// Re-adding an existing code updates the name without duplicating.
	if err := store.AddBankAccount(ctx, "acme", "1002", "Main checking"); err != nil {
		t.Fatalf("AddBankAccount upsert failed: %v", err)
	}

	codes, err := store.ListBankAccounts(ctx, "acme")
	if err != nil {
		t.Fatalf("ListBankAccounts failed: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("got %d codes, want 2: %v", len(codes), codes)
	}

	other, err := store.ListBankAccounts(ctx, "globex")
	if err != nil {
		t.Fatalf("ListBankAccounts failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no codes for other tenant, got %v", other)
	}
}
