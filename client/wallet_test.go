package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/session/connect", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"is_connected": true,
			"public_key":   "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	result, err := client.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, result.IsConnected)
	assert.Equal(t, "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin", result.PublicKey)
}

func TestConnect_BadGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Connect error: user rejected the request",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	_, err := client.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Connect error: user rejected the request")
}

func TestDisconnect_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/session/disconnect", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	assert.NoError(t, client.Disconnect(context.Background()))
}

func TestTokenBalance_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v1/token-balances/acct123", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"account":   "acct123",
			"amount":    "2500000",
			"decimals":  6,
			"ui_amount": "2.5",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	balance, err := client.TokenBalance(context.Background(), "acct123")
	require.NoError(t, err)
	assert.Equal(t, "2500000", balance.Amount)
	assert.Equal(t, uint8(6), balance.Decimals)
	assert.Equal(t, "2.5", balance.UIAmount)
}

func TestTokenAccount_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/token-accounts", r.URL.Path)
		assert.Equal(t, "mint123", r.URL.Query().Get("mint"))
		assert.Equal(t, "owner123", r.URL.Query().Get("owner"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"address": "ata123",
			"mint":    "mint123",
			"owner":   "owner123",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	account, err := client.TokenAccount(context.Background(), "mint123", "owner123")
	require.NoError(t, err)
	assert.Equal(t, "ata123", account.Address)
}

func TestTransfer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/transfers", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["from"])
		assert.Equal(t, "bob", body["to"])
		assert.Equal(t, "1.5", body["amount"])
		_, hasToken := body["token_address"]
		assert.False(t, hasToken)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"signature": "sig123"})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	sig, err := client.Transfer(context.Background(), TransferRequest{From: "alice", To: "bob", Amount: "1.5"})
	require.NoError(t, err)
	assert.Equal(t, "sig123", sig)
}

func TestTransfer_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "amount error"})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	_, err := client.Transfer(context.Background(), TransferRequest{From: "alice", To: "bob", Amount: "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount error")
}

func TestPreviewTransfer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/transfers/preview", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"kind": "token",
			"from": "alice",
			"to": "bob",
			"token_mint": "mint123",
			"amount": 2000000000,
			"fee_payer": "alice",
			"instructions": [
				{"program": "system", "type": "createAccount", "accounts": {"funder": "alice", "new_account": "ata"}, "space": 165},
				{"program": "spl-token", "type": "initializeAccount", "accounts": {"account": "ata"}},
				{"program": "spl-token", "type": "transfer", "accounts": {"source": "src"}, "amount": 2000000000}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	plan, err := client.PreviewTransfer(context.Background(), TransferRequest{From: "alice", To: "bob", TokenAddress: "mint123", Amount: "2"})
	require.NoError(t, err)
	assert.Equal(t, "token", plan.Kind)
	assert.Equal(t, uint64(2000000000), plan.Amount)
	require.Len(t, plan.Instructions, 3)
	require.NotNil(t, plan.Instructions[0].Space)
	assert.Equal(t, uint64(165), *plan.Instructions[0].Space)
	assert.Equal(t, "ata", plan.Instructions[0].Accounts["new_account"])
}

func TestParseErrorResponse_NonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	_, err := client.TokenBalance(context.Background(), "acct")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "boom")
}

func TestRequest_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, nil, nil)
	err := client.Disconnect(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}
