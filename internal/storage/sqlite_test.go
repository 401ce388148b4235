package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/autoledger/autoledger/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Helper function to create labeled test transactions.
func createTestTransactions(tenant string, count int) []model.Transaction {
	txns := make([]model.Transaction, count)
	baseTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		txns[i] = model.Transaction{
			ID:              fmt.Sprintf("txn-%03d", i+1),
			Tenant:          tenant,
			Date:            baseTime.Add(time.Duration(i) * 24 * time.Hour),
			Description:     fmt.Sprintf("NETFLIX INTERNATIONAL B.V. booking %d", i+1),
			DebitAccount:    "4002",
			CreditAccount:   "1002",
			Reference:       "NETFLIX",
			StatementNumber: "1",
			SequenceNumber:  fmt.Sprintf("%d", i+1),
			Amount:          12.99,
		}
	}
	return txns
}

func TestNewSQLiteStorage(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	if store.db == nil {
		t.Fatal("expected open database handle")
	}
}

func TestNewSQLiteStorageEmptyPath(t *testing.T) {
	if _, err := NewSQLiteStorage(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// Running migrations again must be a no-op.
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}
}
