// Package simplefin fetches transactions through a SimpleFIN Bridge access URL.
package simplefin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Config selects how the client authenticates.
type Config struct {
	HTTPClient *http.Client
	// AccessURL skips the claim step when set.
	AccessURL string
	// Token is the one-time setup token, claimed on first use.
	Token string
	// StatePath stores the claimed access URL; DefaultStatePath when empty.
	StatePath string
}

// Client implements a transaction fetcher over the SimpleFIN protocol.
type Client struct {
	httpClient *http.Client
	accessURL  string
	retryOpts  common.RetryOptions
}

type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// NewClient creates a client from an explicit access URL or from saved/claimed auth.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	accessURL := cfg.AccessURL
	if accessURL == "" {
		statePath := cfg.StatePath
		if statePath == "" {
			var err error
			if statePath, err = DefaultStatePath(); err != nil {
				return nil, fmt.Errorf("failed to get state file path: %w", err)
			}
		}
		auth, err := loadOrClaim(ctx, httpClient, cfg.Token, statePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrMissingConfig, err)
		}
		accessURL = auth.AccessURL
	}
	if !isHTTPURL(accessURL) {
		return nil, fmt.Errorf("%w: SimpleFIN access URL must be http(s)", common.ErrInvalidConfig)
	}

	return &Client{
		httpClient: httpClient,
		accessURL:  strings.TrimSuffix(accessURL, "/"),
		retryOpts:  common.DefaultRetryOptions(),
	}, nil
}

// GetTransactions fetches posted transactions dated from startDate through endDate.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	start := model.DateOf(startDate)
	end := model.DateOf(endDate)

	q := url.Values{}
	q.Set("start-date", strconv.FormatInt(start.Unix(), 10))
	// end-date is exclusive
	q.Set("end-date", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))

	slog.Debug("Requesting SimpleFIN transactions",
		"start_date", start.Format(model.DateLayout),
		"end_date", end.Format(model.DateLayout))

	set, err := c.fetchAccounts(ctx, q)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			if tx.Pending {
				continue
			}

			date := model.DateOf(time.Unix(tx.Posted, 0).UTC())
			if date.Before(start) || date.After(end) {
				continue
			}

			amount, err := decimal.NewFromString(strings.TrimSpace(tx.Amount))
			if err != nil {
				return nil, fmt.Errorf("failed to parse amount %q: %w", tx.Amount, err)
			}

			transactions = append(transactions, model.Transaction{
				Date:        date,
				Description: strings.TrimSpace(tx.Description),
				Merchant:    normalizeMerchant(firstNonEmpty(tx.Payee, tx.Description)),
				Reference:   acct.ID + "_" + tx.ID,
				Amount:      amount.Round(2).InexactFloat64(),
			})
		}
	}

	slog.Info("Fetched SimpleFIN transactions",
		"accounts", len(set.Accounts),
		"transactions", len(transactions))
	return transactions, nil
}

// GetAccounts returns the IDs of the accounts behind the access URL.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("balances-only", "1")

	set, err := c.fetchAccounts(ctx, q)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(set.Accounts))
	for _, acct := range set.Accounts {
		ids = append(ids, acct.ID)
	}
	return ids, nil
}

func (c *Client) fetchAccounts(ctx context.Context, query url.Values) (*accountSet, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	u.RawQuery = query.Encode()

	var set accountSet
	err = common.WithRetry(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if reqErr != nil {
			return &common.RetryableError{Err: reqErr, Retryable: false}
		}

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return fmt.Errorf("failed to fetch data: %w", doErr)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: SimpleFIN", common.ErrRateLimit)
		case resp.StatusCode >= 500:
			return fmt.Errorf("SimpleFIN API error: %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return &common.RetryableError{
				Err:       fmt.Errorf("SimpleFIN API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body))),
				Retryable: false,
			}
		}

		set = accountSet{}
		if decErr := json.NewDecoder(resp.Body).Decode(&set); decErr != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to decode response: %w", decErr), Retryable: false}
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	for _, msg := range set.Errors {
		slog.Warn("SimpleFIN reported an error", "message", msg)
	}
	return &set, nil
}

func normalizeMerchant(raw string) string {
	merchant := strings.ToUpper(strings.TrimSpace(raw))
	for _, suffix := range []string{" LLC", " INC", " CORP"} {
		merchant = strings.TrimSuffix(merchant, suffix)
	}
	return cases.Title(language.English).String(strings.ToLower(merchant))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
