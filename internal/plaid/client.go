// Package plaid pulls bank transactions from the Plaid API into SpendScore transactions.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/plaid/plaid-go/v20/plaid"
)

const pageSize = int32(500) // Plaid's max page size

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}
	switch c.Environment {
	case "":
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	case "sandbox", "production":
		return nil
	default:
		return fmt.Errorf("%w: invalid Plaid environment %q: must be sandbox or production",
			common.ErrInvalidConfig, c.Environment)
	}
}

// Client fetches transactions for one Plaid item.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   common.RetryOptions
	accessToken string
}

// NewClient creates a Plaid client from a validated configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetTransactions fetches every transaction between startDate and endDate, inclusive.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, errors.New("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format(model.DateLayout),
		"end_date", endDate.Format(model.DateLayout))

	var fetched []plaid.Transaction
	offset := int32(0)

	for {
		var page []plaid.Transaction

		err := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				startDate.Format(model.DateLayout),
				endDate.Format(model.DateLayout),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return classifyError(c.logger, err, "failed to fetch transactions")
			}

			page = resp.GetTransactions()
			c.logger.Debug("Fetched transaction page",
				"count", len(page),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		fetched = append(fetched, page...)
		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	c.logger.Info("Fetched all transactions", "count", len(fetched))

	transactions := make([]model.Transaction, 0, len(fetched))
	for _, pt := range fetched {
		tx, err := mapTransaction(pt.GetDate(), pt.GetName(), pt.GetMerchantName(),
			pt.GetTransactionId(), pt.GetAmount(), pt.GetCategory())
		if err != nil {
			c.logger.Warn("Skipping Plaid transaction", "id", pt.GetTransactionId(), "error", err)
			continue
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// GetAccounts fetches the account IDs of the linked item.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}

	var accounts []plaid.AccountBase
	err := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return classifyError(c.logger, err, "failed to fetch accounts")
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.GetAccountId())
	}
	return ids, nil
}

// mapTransaction converts Plaid's fields into a SpendScore transaction. Plaid reports
// outflows as positive amounts, so the sign is flipped.
func mapTransaction(date, name, merchant, id string, amount float64, categories []string) (model.Transaction, error) {
	parsed, err := model.ParseDate(date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	if merchant == "" {
		merchant = name
	}

	var category string
	if len(categories) > 0 {
		category = categories[0]
	}

	return model.Transaction{
		Date:        parsed,
		Description: name,
		Merchant:    cleanMerchantName(merchant),
		Category:    category,
		Reference:   id,
		Amount:      -amount,
	}, nil
}

func classifyError(logger *slog.Logger, err error, msg string) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("%s: %w: %w", msg, common.ErrPlaidConnection, err)
	}
	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
		return &common.RetryableError{Err: fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidErr.ErrorMessage), Retryable: true}
	}
	return &common.RetryableError{
		Err:       fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage),
		Retryable: false,
	}
}

// cleanMerchantName title-cases a merchant, drops trailing transaction IDs and legal suffixes.
func cleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !isLetter(runes[j-1]) {
				runes[j] = toUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	if len(words) > 1 {
		last := words[len(words)-1]
		if len(last) > 5 && isAllDigits(last) {
			words = words[:len(words)-1]
		}
	}
	name = strings.Join(words, " ")

	suffixes := []string{" Llc", " Inc", " Corp", " Corporation", " Company", " Co", " Ltd", " Limited"}
	for changed := true; changed; {
		changed = false
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}
