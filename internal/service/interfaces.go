// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/autoledger/autoledger/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, tenant string, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, tenant, id string) (*model.Transaction, error)
	GetTransactionCount(ctx context.Context, tenant string) (int, error)

	// Pattern operations
	UpsertPatterns(ctx context.Context, patterns []model.Pattern) error
	ListPatterns(ctx context.Context, tenant string) ([]model.Pattern, error)
	GetPattern(ctx context.Context, tenant, bankAccount, verbCompany string) (*model.Pattern, error)

	// Bank account reference table
	ListBankAccounts(ctx context.Context, tenant string) ([]string, error)
	AddBankAccount(ctx context.Context, tenant, code, name string) error

	// Analysis metadata
	GetAnalysisMetadata(ctx context.Context, tenant string) (*model.AnalysisMetadata, error)
	SaveAnalysisMetadata(ctx context.Context, meta *model.AnalysisMetadata) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// PatternSource is the read side of the pattern store, as consumed by the
// cache and the predictor.
type PatternSource interface {
	ListPatterns(ctx context.Context, tenant string) ([]model.Pattern, error)
}

// PatternCache is the cached read path over the pattern store. Callers
// that commit new or edited transactions must invalidate the affected
// tenant so the next read observes fresh patterns.
type PatternCache interface {
	Get(ctx context.Context, tenant string) ([]model.Pattern, error)
	Invalidate(ctx context.Context, tenant string) error
	Warm(ctx context.Context, tenants []string) error
}

// BankAccountClassifier answers whether an account code represents a
// bank/cash ledger position for a tenant.
type BankAccountClassifier interface {
	IsBankAccount(ctx context.Context, tenant, accountCode string) (bool, error)
}

// DiscoveryMode selects the transaction window for a discovery run.
type DiscoveryMode string

// Discovery modes.
const (
	// ModeFull scans the complete historical lookback window.
	ModeFull DiscoveryMode = "full"
	// ModeIncremental scans only transactions newer than the last
	// recorded analysis point.
	ModeIncremental DiscoveryMode = "incremental"
)

// DiscoveryResult reports the outcome of a discovery run.
type DiscoveryResult struct {
	TransactionsAnalyzed int
	PatternsDiscovered   int
}
