// Package ofx parses OFX/QFX bank statement exports into transactions
// suitable for the learning engine.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"

	"github.com/autoledger/autoledger/internal/model"
)

// Parser implements OFX/QFX file parsing. Imported transactions land on
// the given tenant with the statement's bank side mapped onto the
// configured ledger account code.
type Parser struct {
	tenant          string
	bankAccountCode string
}

// NewParser creates a parser that assigns transactions to tenant and
// books the bank side on bankAccountCode.
func NewParser(tenant, bankAccountCode string) *Parser {
	return &Parser{
		tenant:          tenant,
		bankAccountCode: bankAccountCode,
	}
}

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes common formatting issues in OFX files: leading
// whitespace before the header, mixed-case SEVERITY values, and
// SGML-style tags missing their closing bracket.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagRe.ReplaceAllString(content, "$1>")
	return content
}

// ParseFile parses an OFX/QFX file and returns transactions.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	statements := 0

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, p.convert(ofxTx, statements))
		}
	}

	slog.Info("Parsed OFX file",
		"tenant", p.tenant,
		"statements", statements,
		"transactions", len(transactions))

	return transactions, nil
}

// convert maps an OFX transaction onto the engine's model. A negative
// amount means money left the bank account, so the bank side is the
// credit account and the opposite side stays empty for prediction; a
// positive amount is a receipt onto the bank side as debit.
func (p *Parser) convert(ofxTx ofxgo.Transaction, statementIndex int) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()

	txn := model.Transaction{
		ID:              newTransactionID(string(ofxTx.FiTID)),
		Tenant:          p.tenant,
		Date:            ofxTx.DtPosted.Time,
		Description:     buildDescription(ofxTx),
		StatementNumber: fmt.Sprintf("%d", statementIndex),
		SequenceNumber:  string(ofxTx.FiTID),
	}

	if amount < 0 {
		txn.Amount = -amount
		txn.CreditAccount = p.bankAccountCode
	} else {
		txn.Amount = amount
		txn.DebitAccount = p.bankAccountCode
	}

	return txn
}

// buildDescription joins the payee/name and memo fields into the
// free-text description the verb extractor consumes.
func buildDescription(ofxTx ofxgo.Transaction) string {
	parts := make([]string, 0, 3)

	if ofxTx.Payee != nil && ofxTx.Payee.Name != "" {
		parts = append(parts, string(ofxTx.Payee.Name))
	}
	if name := strings.TrimSpace(string(ofxTx.Name)); name != "" {
		parts = append(parts, name)
	}
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" {
		parts = append(parts, memo)
	}

	return strings.Join(parts, " ")
}

// newTransactionID prefers the bank's FITID, falling back to a random
// identifier when absent.
func newTransactionID(fitID string) string {
	if fitID != "" {
		return fitID
	}
	return uuid.NewString()
}
