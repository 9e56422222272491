package ynab

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		AccessToken: "test-token",
		BaseURL:     server.URL,
		HTTPClient:  server.Client(),
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	client.WithRetryOptions(service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	})
	return client
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		cfg     Config
	}{
		{name: "valid", cfg: Config{AccessToken: "tok"}},
		{name: "missing token", cfg: Config{}, wantErr: common.ErrMissingConfig},
		{name: "bad url", cfg: Config{AccessToken: "tok", BaseURL: "not a url"}, wantErr: common.ErrInvalidConfig},
		{name: "negative rate", cfg: Config{AccessToken: "tok", RequestsPerHour: -1}, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/budgets", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"budgets":[{"id":"b1","name":"Household"}]}}`))
	})

	budgets, err := client.ListBudgets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Budget{{ID: "b1", Name: "Household"}}, budgets)
}

func TestClient_GetMonthCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/budgets/b1/months/2024-03-01", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"month":{"month":"2024-03-01","categories":[
			{"id":"c1","name":"Rent (1)","goal_target":100000,"goal_target_month":"2024-03-01","hidden":false,"deleted":false},
			{"id":"c2","name":"Groceries","goal_target":null,"goal_target_month":null,"hidden":false,"deleted":false},
			{"id":"c3","name":"Old","goal_target":5000,"goal_target_month":"2024-01-01","hidden":false,"deleted":true}
		]}}}`))
	})

	categories, err := client.GetMonthCategories(context.Background(), "b1", time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, categories, 2)

	assert.Equal(t, "Rent (1)", categories[0].Name)
	assert.Equal(t, model.Milliunits(100000), categories[0].GoalTarget)
	require.NotNil(t, categories[0].GoalTargetMonth)
	assert.Equal(t, time.March, categories[0].GoalTargetMonth.Month())

	assert.False(t, categories[1].HasGoalMonth())
	assert.Zero(t, categories[1].GoalTarget)
}

func TestClient_CurrentMonth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/budgets/b1/months/current", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"month":{"month":"2024-03-01","categories":[]}}}`))
	})

	categories, err := client.GetMonthCategories(context.Background(), "b1", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestClient_GetAccountsSkipsDeleted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"accounts":[
			{"id":"a1","name":"Checking","type":"checking","balance":125000,"closed":false,"deleted":false},
			{"id":"a2","name":"Visa","type":"creditCard","balance":-4000,"closed":false,"deleted":false},
			{"id":"a3","name":"Gone","type":"savings","balance":0,"closed":true,"deleted":true}
		]}}`))
	})

	accounts, err := client.GetAccounts(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, model.AccountTypeChecking, accounts[0].Type)
	assert.Equal(t, model.AccountTypeCreditCard, accounts[1].Type)
	assert.Equal(t, model.Milliunits(-4000), accounts[1].Balance)
}

func TestClient_GetTransactionsByAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/budgets/b1/accounts/a1/transactions", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("since_date"))
		_, _ = w.Write([]byte(`{"data":{"transactions":[
			{"id":"t1","date":"2024-01-01","account_id":"a1","category_id":"c1","amount":1000,"deleted":false},
			{"id":"t2","date":"2024-01-02","account_id":"a1","category_id":null,"amount":500,"deleted":false},
			{"id":"t3","date":"2024-01-02","account_id":"a1","category_id":null,"amount":900,"deleted":true},
			{"id":"t4","date":"2024-02-10","account_id":"a1","category_id":"c1","amount":700,"deleted":false}
		]}}`))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	txs, err := client.GetTransactionsByAccount(context.Background(), "b1", "a1", &start, &end)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "t1", txs[0].ID)
	assert.Equal(t, "c1", txs[0].CategoryID)
	assert.Equal(t, "t2", txs[1].ID)
	assert.Empty(t, txs[1].CategoryID)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		wantErr   error
		name      string
		body      string
		status    int
		wantCalls int32
	}{
		{
			name:      "unauthorized",
			status:    http.StatusUnauthorized,
			body:      `{"error":{"id":"401","name":"unauthorized","detail":"Unauthorized"}}`,
			wantErr:   common.ErrUnauthorized,
			wantCalls: 1,
		},
		{
			name:      "not found",
			status:    http.StatusNotFound,
			body:      `{"error":{"id":"404.2","name":"resource_not_found","detail":"Resource not found"}}`,
			wantErr:   common.ErrNotFound,
			wantCalls: 1,
		},
		{
			name:      "rate limited retries once",
			status:    http.StatusTooManyRequests,
			body:      `{"error":{"id":"429","name":"too_many_requests","detail":"Too many requests"}}`,
			wantErr:   common.ErrRateLimit,
			wantCalls: 2,
		},
		{
			name:      "server error retries once",
			status:    http.StatusInternalServerError,
			body:      `oops`,
			wantErr:   common.ErrMaxRetries,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetAccounts(context.Background(), "b1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, common.ErrDataSource)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_RecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"budgets":[]}}`))
	})

	budgets, err := client.ListBudgets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, budgets)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CachesResponses(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"budgets":[{"id":"b1","name":"Household"}]}}`))
	})

	for i := 0; i < 3; i++ {
		_, err := client.ListBudgets(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_NegativeCacheTTLDisablesCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"budgets":[]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		AccessToken: "test-token",
		BaseURL:     server.URL,
		HTTPClient:  server.Client(),
		CacheTTL:    -1,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	for i := 0; i < 2; i++ {
		_, err := client.ListBudgets(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"budgets":[]}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListBudgets(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
