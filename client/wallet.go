package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ConnectResult is the session state returned by the server after a connect.
type ConnectResult struct {
	IsConnected bool   `json:"is_connected"`
	PublicKey   string `json:"public_key"`
}

// TokenBalance is the balance of an SPL token account.
type TokenBalance struct {
	Account  string `json:"account"`
	Amount   string `json:"amount"`
	Decimals uint8  `json:"decimals"`
	UIAmount string `json:"ui_amount"`
}

// TokenAccount is a derived associated token account.
type TokenAccount struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
}

// TransferRequest describes a transfer to submit. Amount is a decimal string
// in whole units, e.g. "1.5". An empty TokenAddress means native SOL.
type TransferRequest struct {
	From         string `json:"from"`
	To           string `json:"to"`
	TokenAddress string `json:"token_address,omitempty"`
	Amount       string `json:"amount"`
}

// Instruction is a described instruction of a previewed transfer.
type Instruction struct {
	Program  string            `json:"program"`
	Type     string            `json:"type"`
	Accounts map[string]string `json:"accounts"`
	Amount   *uint64           `json:"amount,omitempty"`
	Space    *uint64           `json:"space,omitempty"`
	Owner    *string           `json:"owner,omitempty"`
}

// TransferPlan is a previewed transfer that was not signed or broadcast.
type TransferPlan struct {
	Kind         string        `json:"kind"`
	From         string        `json:"from"`
	To           string        `json:"to"`
	TokenMint    string        `json:"token_mint,omitempty"`
	Amount       uint64        `json:"amount"`
	FeePayer     string        `json:"fee_payer"`
	Instructions []Instruction `json:"instructions"`
}

// Client is the HTTP client for the solwallet service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new wallet service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Connect asks the server to connect its wallet session.
func (c *Client) Connect(ctx context.Context) (*ConnectResult, error) {
	var result ConnectResult
	if err := c.do(ctx, "POST", c.baseURL+"/api/v1/session/connect", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("wallet connected", "public_key", result.PublicKey)
	return &result, nil
}

// Disconnect asks the server to end its wallet session.
func (c *Client) Disconnect(ctx context.Context) error {
	if err := c.do(ctx, "POST", c.baseURL+"/api/v1/session/disconnect", nil, http.StatusNoContent, nil); err != nil {
		return err
	}

	c.logger.Debug("wallet disconnected")
	return nil
}

// TokenBalance retrieves the balance of a token account.
func (c *Client) TokenBalance(ctx context.Context, account string) (*TokenBalance, error) {
	u := fmt.Sprintf("%s/api/v1/token-balances/%s", c.baseURL, url.PathEscape(account))

	var balance TokenBalance
	if err := c.do(ctx, "GET", u, nil, http.StatusOK, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// TokenAccount derives the associated token account of owner for mint.
func (c *Client) TokenAccount(ctx context.Context, mint, owner string) (*TokenAccount, error) {
	params := url.Values{}
	params.Set("mint", mint)
	params.Set("owner", owner)
	u := c.baseURL + "/api/v1/token-accounts?" + params.Encode()

	var account TokenAccount
	if err := c.do(ctx, "GET", u, nil, http.StatusOK, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Transfer submits a transfer and returns its signature. The signature means
// the node accepted the transaction, not that it was confirmed.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (string, error) {
	var resp struct {
		Signature string `json:"signature"`
	}
	if err := c.do(ctx, "POST", c.baseURL+"/api/v1/transfers", req, http.StatusAccepted, &resp); err != nil {
		return "", err
	}

	c.logger.Debug("transfer submitted", "signature", resp.Signature, "to", req.To)
	return resp.Signature, nil
}

// PreviewTransfer assembles a transfer on the server without broadcasting it.
func (c *Client) PreviewTransfer(ctx context.Context, req TransferRequest) (*TransferPlan, error) {
	var plan TransferPlan
	if err := c.do(ctx, "POST", c.baseURL+"/api/v1/transfers/preview", req, http.StatusOK, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// do sends a request with an optional JSON body and decodes the response into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, method, u string, in interface{}, wantStatus int, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.parseErrorResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed: %s", errResp.Error)
}
