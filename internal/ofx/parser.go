// Package ofx reads OFX and QFX bank exports into SpendScore transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML exports sometimes drop the closing bracket of a bare opening tag.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// categoriesByType gives OFX transaction types that imply a category.
var categoriesByType = map[string]string{
	"INT": "Interest",
	"FEE": "Bank Fees",
	"ATM": "Cash & ATM",
}

var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// Parser converts OFX statements. The zero value is not usable; call NewParser.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{logger: slog.Default().With("component", "ofx")}
}

// ParseFile reads every bank and credit card statement in reader. Amounts keep the
// bank's sign: debits are negative.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			transactions = append(transactions, p.convertAll(stmt.BankTranList.Transactions)...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			transactions = append(transactions, p.convertAll(stmt.BankTranList.Transactions)...)
		}
	}

	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w in OFX file", common.ErrNoTransactions)
	}

	p.logger.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) convertAll(in []ofxgo.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(in))
	for _, tx := range in {
		txn := convertTransaction(tx)
		if !model.ValidAmount(txn.Amount) {
			p.logger.Warn("Skipping transaction with out of range amount", "fitid", txn.Reference, "amount", tx.TrnAmt.String())
			continue
		}
		out = append(out, txn)
	}
	return out
}

// preprocess fixes common formatting issues in OFX files.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func convertTransaction(tx ofxgo.Transaction) model.Transaction {
	amount, _ := tx.TrnAmt.Float64()

	description := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (description == "" || isGenericDescription(description)) {
		description = strings.TrimSpace(string(tx.Memo))
	}

	return model.Transaction{
		Date:        model.DateOf(tx.DtPosted.Time),
		Description: description,
		Merchant:    extractMerchantName(tx),
		Category:    categoriesByType[tx.TrnType.String()],
		Reference:   string(tx.FiTID),
		Amount:      amount,
	}
}

// extractMerchantName prefers PAYEE, then a cleaned NAME (or MEMO when NAME is generic).
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " left over from "PURCHASE AUTHORIZED ON 01/15 ..."
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
