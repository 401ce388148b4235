package predict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoledger/autoledger/internal/model"
	"github.com/autoledger/autoledger/internal/verb"
)

type stubCache struct {
	patterns []model.Pattern
	err      error
}

func (s *stubCache) Get(context.Context, string) ([]model.Pattern, error) {
	return s.patterns, s.err
}
func (s *stubCache) Invalidate(context.Context, string) error { return nil }
func (s *stubCache) Warm(context.Context, []string) error     { return nil }

type stubClassifier struct {
	bankCodes map[string]bool
}

func (s *stubClassifier) IsBankAccount(_ context.Context, _ string, code string) (bool, error) {
	return s.bankCodes[code], nil
}

func newTestPredictor(patterns ...model.Pattern) *Predictor {
	return NewPredictor(
		&stubCache{patterns: patterns},
		&stubClassifier{bankCodes: map[string]bool{"1002": true, "1003": true}},
		verb.NewExtractor(),
	)
}

func netflixPattern() model.Pattern {
	return model.Pattern{
		Tenant:               "acme",
		BankAccount:          "1002",
		Verb:                 "NETFLIX",
		VerbCompany:          "NETFLIX",
		ReferenceNumber:      "SUBSCRIPTIONS",
		OppositeDebitAccount: "4002",
		Confidence:           1.0,
		Occurrences:          5,
		LastSeen:             time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		LastAmount:           12.99,
	}
}

func candidateTransaction() model.Transaction {
	return model.Transaction{
		ID:            "txn-1",
		Tenant:        "acme",
		Date:          time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Description:   "SEPA INCASSO NETFLIX INTERNATIONAL",
		CreditAccount: "1002",
		Amount:        12.99,
	}
}

func TestPredictFillsEmptyFields(t *testing.T) {
	p := newTestPredictor(netflixPattern())

	results, err := p.Predict(context.Background(), "acme", []model.Transaction{candidateTransaction()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Predictions, 2)

	debit, ok := results[0].Prediction(model.FieldDebitAccount)
	require.True(t, ok)
	assert.Equal(t, "4002", debit.Value)
	assert.InDelta(t, 1.0, debit.Confidence, 1e-9)
	assert.Equal(t, "acme|1002|NETFLIX", debit.PatternKey)

	reference, ok := results[0].Prediction(model.FieldReference)
	require.True(t, ok)
	assert.Equal(t, "SUBSCRIPTIONS", reference.Value)

	_, ok = results[0].Prediction(model.FieldCreditAccount)
	assert.False(t, ok, "the bank side is already populated")
}

func TestPredictNeverOverwritesPopulatedFields(t *testing.T) {
	p := newTestPredictor(netflixPattern())

	txn := candidateTransaction()
	txn.Reference = "MANUALLY-CODED"

	results, err := p.Predict(context.Background(), "acme", []model.Transaction{txn})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Predictions, 1)
	assert.Equal(t, model.FieldDebitAccount, results[0].Predictions[0].Field)

	// Fully labeled transactions produce no predictions at all.
	txn.DebitAccount = "4002"
	results, err = p.Predict(context.Background(), "acme", []model.Transaction{txn})
	require.NoError(t, err)
	assert.Empty(t, results[0].Predictions)
}

func TestPredictUnseenVerbIsAMiss(t *testing.T) {
	p := newTestPredictor(netflixPattern())

	txn := candidateTransaction()
	txn.Description = "BAKKERIJ JANSEN AMSTERDAM"

	results, err := p.Predict(context.Background(), "acme", []model.Transaction{txn})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Predictions, "unknown counterparties are not an error")
}

func TestPredictAmbiguousBankSideIsSkipped(t *testing.T) {
	p := newTestPredictor(netflixPattern())

	transfer := candidateTransaction()
	transfer.DebitAccount = "1003"

	noBank := candidateTransaction()
	noBank.CreditAccount = "2100"

	results, err := p.Predict(context.Background(), "acme", []model.Transaction{transfer, noBank})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, results[0].Predictions)
	assert.Empty(t, results[1].Predictions)
}

func TestPredictSingleMatchIgnoresConfidenceFloor(t *testing.T) {
	weak := netflixPattern()
	weak.Confidence = 0.4
	p := newTestPredictor(weak)

	results, err := p.Predict(context.Background(), "acme", []model.Transaction{candidateTransaction()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotEmpty(t, results[0].Predictions)
	assert.InDelta(t, 0.4, results[0].Predictions[0].Confidence, 1e-9)
}

func TestPredictMultipleCandidatesApplyFloor(t *testing.T) {
	older := netflixPattern()
	older.LastSeen = older.LastSeen.AddDate(0, -3, 0)
	older.OppositeDebitAccount = "4010"

	t.Run("winner below floor is suppressed", func(t *testing.T) {
		weak := netflixPattern()
		weak.Confidence = 0.5
		p := newTestPredictor(weak, older)

		results, err := p.Predict(context.Background(), "acme", []model.Transaction{candidateTransaction()})
		require.NoError(t, err)
		assert.Empty(t, results[0].Predictions)
	})

	t.Run("winner above floor is returned", func(t *testing.T) {
		p := newTestPredictor(netflixPattern(), older)

		results, err := p.Predict(context.Background(), "acme", []model.Transaction{candidateTransaction()})
		require.NoError(t, err)
		require.NotEmpty(t, results[0].Predictions)
		debit, ok := results[0].Prediction(model.FieldDebitAccount)
		require.True(t, ok)
		assert.Equal(t, "4002", debit.Value, "the most recently seen pattern wins")
	})
}

func TestPredictCacheFailureStillSucceeds(t *testing.T) {
	p := NewPredictor(
		&stubCache{err: errors.New("store offline")},
		&stubClassifier{bankCodes: map[string]bool{"1002": true}},
		verb.NewExtractor(),
	)

	results, err := p.Predict(context.Background(), "acme", []model.Transaction{candidateTransaction()})
	require.NoError(t, err, "a cold pattern source degrades to misses, not failure")
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Predictions)
}
