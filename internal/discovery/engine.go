// Package discovery learns transaction patterns from historical,
// fully-labeled bank transactions and persists them to the pattern store.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/autoledger/autoledger/internal/common"
	"github.com/autoledger/autoledger/internal/model"
	"github.com/autoledger/autoledger/internal/service"
	"github.com/autoledger/autoledger/internal/verb"
)

// fullLookback is the historical window scanned in full mode.
const fullLookback = 2 * 365 * 24 * time.Hour

// Engine runs pattern discovery over a tenant's transaction history.
type Engine struct {
	store      service.Storage
	classifier service.BankAccountClassifier
	extractor  *verb.Extractor
	cache      service.PatternCache
	now        func() time.Time
}

// NewEngine creates a discovery engine. cache may be nil; when present it
// is invalidated after a run that discovered patterns so the next
// prediction observes them.
func NewEngine(store service.Storage, classifier service.BankAccountClassifier, extractor *verb.Extractor, patternCache service.PatternCache) *Engine {
	return &Engine{
		store:      store,
		classifier: classifier,
		extractor:  extractor,
		cache:      patternCache,
		now:        time.Now,
	}
}

// workingEntry accumulates observations for one pattern key during a run.
type workingEntry struct {
	pattern model.Pattern
	labels  map[string]*labelCount
}

// labelCount tracks how often a specific bookkeeping label was observed
// for a key, and how recently.
type labelCount struct {
	lastSeen    time.Time
	reference   string
	oppDebit    string
	oppCredit   string
	sample      string
	lastAmount  float64
	occurrences int
}

// Discover scans the tenant's transaction window for the given mode,
// learns patterns from every fully-labeled transaction, and upserts the
// results. A transaction that cannot be learned from is skipped silently;
// a store failure aborts the run with a zero result and the cause wrapped
// for the caller to log.
func (e *Engine) Discover(ctx context.Context, tenant string, mode service.DiscoveryMode) (service.DiscoveryResult, error) {
	var result service.DiscoveryResult

	window, err := e.analysisWindow(ctx, tenant, mode)
	if err != nil {
		return result, err
	}

	transactions, err := e.store.GetTransactions(ctx, tenant, window)
	if err != nil {
		common.LogError(err, "Discovery aborted: transaction source unreachable",
			common.Fields{"tenant": tenant, "mode": mode})
		return result, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	working := make(map[string]*workingEntry)
	var lastTxnDate time.Time

	for i := range transactions {
		txn := &transactions[i]
		result.TransactionsAnalyzed++
		if txn.Date.After(lastTxnDate) {
			lastTxnDate = txn.Date
		}

		if err := e.learn(ctx, txn, working); err != nil {
			return service.DiscoveryResult{}, err
		}
	}

	patterns := flush(working)
	if len(patterns) > 0 {
		if err := e.store.UpsertPatterns(ctx, patterns); err != nil {
			common.LogError(err, "Discovery aborted: pattern upsert failed",
				common.Fields{"tenant": tenant, "mode": mode})
			return service.DiscoveryResult{}, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
		}
	}
	result.PatternsDiscovered = len(patterns)

	if err := e.saveMetadata(ctx, tenant, window, &result, lastTxnDate); err != nil {
		return result, err
	}

	if e.cache != nil && result.PatternsDiscovered > 0 {
		if err := e.cache.Invalidate(ctx, tenant); err != nil {
			slog.Warn("Failed to invalidate pattern cache after discovery",
				"tenant", tenant,
				"error", err)
		}
	}

	slog.Info("Discovery run complete",
		"tenant", tenant,
		"mode", mode,
		"transactions_analyzed", result.TransactionsAnalyzed,
		"patterns_discovered", result.PatternsDiscovered)

	return result, nil
}

// analysisWindow selects the transaction window for the run. Full mode
// scans the fixed historical lookback; incremental mode scans only
// transactions newer than the last analyzed transaction date.
func (e *Engine) analysisWindow(ctx context.Context, tenant string, mode service.DiscoveryMode) (service.TransactionFilter, error) {
	var filter service.TransactionFilter

	switch mode {
	case service.ModeFull:
		start := e.now().Add(-fullLookback)
		filter.StartDate = &start
	case service.ModeIncremental:
		meta, err := e.store.GetAnalysisMetadata(ctx, tenant)
		if errors.Is(err, common.ErrNotFound) {
			// First run for this tenant behaves like a full scan.
			start := e.now().Add(-fullLookback)
			filter.StartDate = &start
			return filter, nil
		}
		if err != nil {
			return filter, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
		}
		// Nudge past the recorded boundary so already-counted
		// transactions are not re-counted.
		start := meta.LastTransaction.Add(time.Second)
		filter.StartDate = &start
	default:
		return filter, fmt.Errorf("unknown discovery mode %q", mode)
	}

	return filter, nil
}

// learn folds one transaction into the working set. Transactions without
// a complete label, without an identifiable bank side, or without an
// extractable verb are skipped; none of these are errors.
func (e *Engine) learn(ctx context.Context, txn *model.Transaction, working map[string]*workingEntry) error {
	if !txn.HasCompleteLabel() {
		return nil
	}

	bankAccount, oppDebit, oppCredit, ok, err := e.bankSide(ctx, txn)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	v, ok := e.extractor.Extract(txn.Description)
	if !ok {
		return nil
	}

	key := txn.Tenant + "|" + bankAccount + "|" + v.Company
	entry, exists := working[key]
	if !exists {
		entry = &workingEntry{
			pattern: model.Pattern{
				Tenant:        txn.Tenant,
				BankAccount:   bankAccount,
				Verb:          v.Raw,
				VerbCompany:   v.Company,
				VerbReference: v.Reference,
				IsCompound:    v.IsCompound,
			},
			labels: make(map[string]*labelCount),
		}
		working[key] = entry
	}

	labelKey := txn.Reference + "|" + oppDebit + "|" + oppCredit
	lc, exists := entry.labels[labelKey]
	if !exists {
		lc = &labelCount{
			reference: txn.Reference,
			oppDebit:  oppDebit,
			oppCredit: oppCredit,
		}
		entry.labels[labelKey] = lc
	}
	lc.occurrences++
	if !txn.Date.Before(lc.lastSeen) {
		lc.lastSeen = txn.Date
		lc.sample = txn.Description
		lc.lastAmount = txn.Amount
	}

	return nil
}

// bankSide identifies which account side of the transaction is the bank
// account and returns the opposite-side labels to learn. Transfers
// between two bank accounts are ambiguous and skipped.
func (e *Engine) bankSide(ctx context.Context, txn *model.Transaction) (bankAccount, oppDebit, oppCredit string, ok bool, err error) {
	debitIsBank, err := e.classifier.IsBankAccount(ctx, txn.Tenant, txn.DebitAccount)
	if err != nil {
		return "", "", "", false, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	creditIsBank, err := e.classifier.IsBankAccount(ctx, txn.Tenant, txn.CreditAccount)
	if err != nil {
		return "", "", "", false, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	switch {
	case debitIsBank && creditIsBank:
		return "", "", "", false, nil
	case creditIsBank && txn.DebitAccount != "":
		return txn.CreditAccount, txn.DebitAccount, "", true, nil
	case debitIsBank && txn.CreditAccount != "":
		return txn.DebitAccount, "", txn.CreditAccount, true, nil
	default:
		return "", "", "", false, nil
	}
}

// flush resolves each working entry to its dominant label and produces
// the patterns to upsert. Occurrences carry the run's delta only; the
// store accumulates them onto existing counters.
func flush(working map[string]*workingEntry) []model.Pattern {
	if len(working) == 0 {
		return nil
	}

	patterns := make([]model.Pattern, 0, len(working))
	for _, entry := range working {
		var dominant *labelCount
		total := 0
		for _, lc := range entry.labels {
			total += lc.occurrences
			if dominant == nil ||
				lc.occurrences > dominant.occurrences ||
				(lc.occurrences == dominant.occurrences && lc.lastSeen.After(dominant.lastSeen)) {
				dominant = lc
			}
		}

		p := entry.pattern
		p.ReferenceNumber = dominant.reference
		p.OppositeDebitAccount = dominant.oppDebit
		p.OppositeCreditAccount = dominant.oppCredit
		p.Occurrences = total
		p.Confidence = model.ComputeConfidence(dominant.occurrences, total)
		p.LastSeen = latestSeen(entry.labels)
		p.SampleDescription = dominant.sample
		p.LastAmount = dominant.lastAmount
		patterns = append(patterns, p)
	}

	return patterns
}

func latestSeen(labels map[string]*labelCount) time.Time {
	var latest time.Time
	for _, lc := range labels {
		if lc.lastSeen.After(latest) {
			latest = lc.lastSeen
		}
	}
	return latest
}

func (e *Engine) saveMetadata(ctx context.Context, tenant string, window service.TransactionFilter, result *service.DiscoveryResult, lastTxnDate time.Time) error {
	meta := &model.AnalysisMetadata{
		Tenant:               tenant,
		AnalyzedAt:           e.now(),
		TransactionsAnalyzed: result.TransactionsAnalyzed,
		PatternsDiscovered:   result.PatternsDiscovered,
		LastTransaction:      lastTxnDate,
	}
	if window.StartDate != nil {
		meta.RangeStart = *window.StartDate
	}
	meta.RangeEnd = lastTxnDate

	if err := e.store.SaveAnalysisMetadata(ctx, meta); err != nil {
		return fmt.Errorf("failed to record analysis metadata: %w", err)
	}
	return nil
}
