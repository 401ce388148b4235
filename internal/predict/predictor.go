// Package predict fills empty bookkeeping fields on candidate
// transactions using previously learned patterns.
package predict

import (
	"context"
	"log/slog"

	"github.com/autoledger/autoledger/internal/common"
	"github.com/autoledger/autoledger/internal/model"
	"github.com/autoledger/autoledger/internal/service"
	"github.com/autoledger/autoledger/internal/verb"
)

// confidenceFloor gates predictions only when tie-breaking among
// multiple viable candidates. A single unambiguous match is always
// returned regardless of its confidence.
const confidenceFloor = 0.8

// Predictor predicts missing transaction fields from cached patterns.
type Predictor struct {
	cache      service.PatternCache
	classifier service.BankAccountClassifier
	extractor  *verb.Extractor
	ranking    Comparator
}

// NewPredictor creates a predictor reading patterns through the cache.
func NewPredictor(patternCache service.PatternCache, classifier service.BankAccountClassifier, extractor *verb.Extractor) *Predictor {
	return &Predictor{
		cache:      patternCache,
		classifier: classifier,
		extractor:  extractor,
		ranking:    DefaultRanking(),
	}
}

// WithRanking overrides the conflict-resolution policy.
func (p *Predictor) WithRanking(cmp Comparator) *Predictor {
	p.ranking = cmp
	return p
}

// Predict returns one result per input transaction, predicting values
// only for fields that are currently empty. Transactions whose verb has
// never been seen produce a result with no predictions; that is the
// expected new-counterparty case, not an error. If patterns cannot be
// loaded at all, every prediction is a miss and the batch still succeeds.
func (p *Predictor) Predict(ctx context.Context, tenant string, transactions []model.Transaction) ([]model.PredictionResult, error) {
	patterns, err := p.cache.Get(ctx, tenant)
	if err != nil {
		common.LogError(err, "Predicting with no patterns: store unreachable",
			common.Fields{"tenant": tenant})
		patterns = nil
	}

	index := buildIndex(patterns)
	results := make([]model.PredictionResult, 0, len(transactions))

	for i := range transactions {
		txn := transactions[i]
		result := model.PredictionResult{Transaction: txn}

		if preds, ok := p.predictOne(ctx, &txn, index); ok {
			result.Predictions = preds
		}
		results = append(results, result)
	}

	return results, nil
}

// predictOne predicts the empty fields of a single transaction.
func (p *Predictor) predictOne(ctx context.Context, txn *model.Transaction, index map[string][]*model.Pattern) ([]model.FieldPrediction, bool) {
	bankAccount, ok := p.knownBankSide(ctx, txn)
	if !ok {
		return nil, false
	}

	v, ok := p.extractor.Extract(txn.Description)
	if !ok {
		return nil, false
	}

	candidates := index[bankAccount+"|"+v.Company]
	best, ok := p.resolve(candidates, txn)
	if !ok {
		return nil, false
	}

	var predictions []model.FieldPrediction
	emit := func(field model.PredictedField, current, value string) {
		// Populated fields are never overwritten.
		if current != "" || value == "" {
			return
		}
		predictions = append(predictions, model.FieldPrediction{
			Field:      field,
			Value:      value,
			Confidence: best.Confidence,
			PatternKey: best.Key(),
		})
	}

	emit(model.FieldDebitAccount, txn.DebitAccount, best.OppositeDebitAccount)
	emit(model.FieldCreditAccount, txn.CreditAccount, best.OppositeCreditAccount)
	emit(model.FieldReference, txn.Reference, best.ReferenceNumber)

	return predictions, len(predictions) > 0
}

// knownBankSide determines which populated account side is the bank
// account the pattern key is built from. Transactions where neither or
// both sides resolve to a bank account are ambiguous and skipped.
func (p *Predictor) knownBankSide(ctx context.Context, txn *model.Transaction) (string, bool) {
	debitIsBank := p.isBank(ctx, txn.Tenant, txn.DebitAccount)
	creditIsBank := p.isBank(ctx, txn.Tenant, txn.CreditAccount)

	switch {
	case debitIsBank && creditIsBank:
		return "", false
	case debitIsBank:
		return txn.DebitAccount, true
	case creditIsBank:
		return txn.CreditAccount, true
	default:
		return "", false
	}
}

func (p *Predictor) isBank(ctx context.Context, tenant, code string) bool {
	if code == "" {
		return false
	}
	isBank, err := p.classifier.IsBankAccount(ctx, tenant, code)
	if err != nil {
		slog.Warn("Bank account classification failed, treating as non-bank",
			"tenant", tenant,
			"account", code,
			"error", err)
		return false
	}
	return isBank
}

// resolve picks the best candidate. A single match is returned as-is;
// multiple matches are ranked and the winner must clear the confidence
// floor.
func (p *Predictor) resolve(candidates []*model.Pattern, txn *model.Transaction) (*model.Pattern, bool) {
	switch len(candidates) {
	case 0:
		return nil, false
	case 1:
		return candidates[0], true
	}

	ranked := make([]*model.Pattern, len(candidates))
	copy(ranked, candidates)
	rank(ranked, txn, p.ranking)

	best := ranked[0]
	if best.Confidence < confidenceFloor {
		return nil, false
	}
	return best, true
}

// buildIndex groups patterns by (bank account, verb company). The cache
// returns patterns ordered most-recently-seen first, and the grouping
// preserves that order.
func buildIndex(patterns []model.Pattern) map[string][]*model.Pattern {
	index := make(map[string][]*model.Pattern, len(patterns))
	for i := range patterns {
		p := &patterns[i]
		key := p.BankAccount + "|" + p.VerbCompany
		index[key] = append(index[key], p)
	}
	return index
}
