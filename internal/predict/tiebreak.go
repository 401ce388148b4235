package predict

import (
	"math"
	"sort"
	"strings"

	"github.com/autoledger/autoledger/internal/model"
)

// Comparator orders two candidate patterns for a transaction. It returns
// a negative value when a should rank ahead of b, positive when b should
// rank ahead, and zero to defer to the next comparator in the chain.
type Comparator func(a, b *model.Pattern, txn *model.Transaction) int

// Chain composes comparators into a single ordering: earlier comparators
// dominate, later ones only break remaining ties. The tie-break policy is
// configuration, not algorithm; swapping the chain changes ranking
// without touching extraction or storage.
func Chain(comparators ...Comparator) Comparator {
	return func(a, b *model.Pattern, txn *model.Transaction) int {
		for _, cmp := range comparators {
			if r := cmp(a, b, txn); r != 0 {
				return r
			}
		}
		return 0
	}
}

// ByRecency prefers the pattern seen most recently.
func ByRecency(a, b *model.Pattern, _ *model.Transaction) int {
	switch {
	case a.LastSeen.After(b.LastSeen):
		return -1
	case b.LastSeen.After(a.LastSeen):
		return 1
	default:
		return 0
	}
}

// ByOccurrences prefers the pattern observed most often.
func ByOccurrences(a, b *model.Pattern, _ *model.Transaction) int {
	return b.Occurrences - a.Occurrences
}

// ByAmountSimilarity prefers the pattern whose last observed amount is
// closest to the transaction amount. A pattern without a recorded amount
// is treated as maximally distant.
func ByAmountSimilarity(a, b *model.Pattern, txn *model.Transaction) int {
	da := amountDistance(a, txn)
	db := amountDistance(b, txn)
	switch {
	case da < db:
		return -1
	case db < da:
		return 1
	default:
		return 0
	}
}

func amountDistance(p *model.Pattern, txn *model.Transaction) float64 {
	if p.LastAmount == 0 {
		return math.MaxFloat64
	}
	return math.Abs(p.LastAmount - txn.Amount)
}

// ByAccountCodeDesc is the final deterministic tie-break: descending
// comparison of the opposite account codes.
func ByAccountCodeDesc(a, b *model.Pattern, _ *model.Transaction) int {
	return strings.Compare(
		b.OppositeDebitAccount+b.OppositeCreditAccount,
		a.OppositeDebitAccount+a.OppositeCreditAccount,
	)
}

// DefaultRanking is the standard conflict-resolution policy: recency,
// then frequency, then amount similarity, then account code descending.
func DefaultRanking() Comparator {
	return Chain(ByRecency, ByOccurrences, ByAmountSimilarity, ByAccountCodeDesc)
}

// rank sorts candidates in place, best first, using the comparator.
func rank(candidates []*model.Pattern, txn *model.Transaction, cmp Comparator) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return cmp(candidates[i], candidates[j], txn) < 0
	})
}
