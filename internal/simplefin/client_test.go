package simplefin

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posted(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 15, 0, 0, 0, time.UTC).Unix()
}

func bridge(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var claims atomic.Int32

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/claim/abc", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		claims.Add(1)
		fmt.Fprint(w, srv.URL+"/simplefin\n")
	})
	mux.HandleFunc("/simplefin/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
  "errors": [],
  "accounts": [{
    "id": "ACT-1",
    "name": "Checking",
    "currency": "USD",
    "balance": "1200.00",
    "transactions": [
      {"id": "t1", "posted": %d, "amount": "-33.29", "description": "COFFEE HOUSE 42", "payee": "coffee house llc"},
      {"id": "t2", "posted": %d, "amount": "2500.00", "description": "PAYROLL"},
      {"id": "t3", "posted": %d, "amount": "-10.00", "description": "PENDING CHARGE", "pending": true},
      {"id": "t4", "posted": %d, "amount": "-99.99", "description": "TOO LATE"}
    ]
  }]
}`, posted(2024, time.March, 2), posted(2024, time.March, 5), posted(2024, time.March, 6), posted(2024, time.April, 2))
	})

	return srv, &claims
}

func TestNewClient_ClaimsOnceAndReusesState(t *testing.T) {
	srv, claims := bridge(t)
	statePath := filepath.Join(t.TempDir(), "simplefin_auth.json")
	token := base64.StdEncoding.EncodeToString([]byte(srv.URL + "/claim/abc"))

	client, err := NewClient(context.Background(), Config{Token: token, StatePath: statePath})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/simplefin", client.accessURL)
	assert.Equal(t, int32(1), claims.Load())

	info, err := os.Stat(statePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	again, err := NewClient(context.Background(), Config{StatePath: statePath})
	require.NoError(t, err)
	assert.Equal(t, client.accessURL, again.accessURL)
	assert.Equal(t, int32(1), claims.Load())
}

func TestNewClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "no token and no state",
			cfg:     Config{StatePath: filepath.Join(t.TempDir(), "missing.json")},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "token is not base64",
			cfg:     Config{Token: "%%%", StatePath: filepath.Join(t.TempDir(), "state.json")},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "bad access url",
			cfg:     Config{AccessURL: "ftp://example.com"},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetTransactions(t *testing.T) {
	srv, _ := bridge(t)
	client, err := NewClient(context.Background(), Config{AccessURL: srv.URL + "/simplefin/"})
	require.NoError(t, err)

	txns, err := client.GetTransactions(context.Background(),
		model.NewDate(2024, time.March, 1), model.NewDate(2024, time.March, 31))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, model.Transaction{
		Date:        model.NewDate(2024, time.March, 2),
		Description: "COFFEE HOUSE 42",
		Merchant:    "Coffee House",
		Reference:   "ACT-1_t1",
		Amount:      -33.29,
	}, txns[0])

	assert.True(t, txns[1].IsCredit())
	assert.Equal(t, "Payroll", txns[1].Merchant)
}

func TestGetAccounts(t *testing.T) {
	srv, _ := bridge(t)
	client, err := NewClient(context.Background(), Config{AccessURL: srv.URL + "/simplefin"})
	require.NoError(t, err)

	ids, err := client.GetAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ACT-1"}, ids)
}

func TestGetTransactions_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "access revoked", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Config{AccessURL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetTransactions(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ACME CORP", want: "Acme"},
		{in: "  whole foods market  ", want: "Whole Foods Market"},
		{in: "SHELL OIL INC", want: "Shell Oil"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMerchant(tt.in))
		})
	}
}
