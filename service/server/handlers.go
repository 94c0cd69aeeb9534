package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/brojonat/solwallet/service/nats"
	"github.com/brojonat/solwallet/service/solana"
	"github.com/brojonat/solwallet/service/wallet"
	solanago "github.com/gagliardetto/solana-go"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB
	maxAddressLength   = 100     // Solana addresses are 44 chars, give buffer
)

var (
	// Valid Solana address characters: base58 (no 0, O, I, l)
	validAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)
)

// handleConnect returns a handler that connects the wallet session.
// POST /api/v1/session/connect
func handleConnect(wal *wallet.Wallet, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := wal.Connect(r.Context())
		if err != nil {
			logger.ErrorContext(r.Context(), "failed to connect wallet", "error", err)
			writeError(w, err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, result, http.StatusOK)
	})
}

// handleDisconnect returns a handler that ends the wallet session.
// POST /api/v1/session/disconnect
func handleDisconnect(wal *wallet.Wallet, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := wal.Disconnect(r.Context()); err != nil {
			logger.ErrorContext(r.Context(), "failed to disconnect wallet", "error", err)
			writeError(w, err.Error(), http.StatusBadGateway)
			return
		}

		logger.InfoContext(r.Context(), "wallet disconnected")
		w.WriteHeader(http.StatusNoContent)
	})
}

// handleGetTokenBalance returns a handler that reads a token account balance.
// GET /api/v1/token-balances/{account}
func handleGetTokenBalance(wal *wallet.Wallet, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := r.PathValue("account")

		pk, err := parsePublicKey("account", account)
		if err != nil {
			logger.DebugContext(r.Context(), "invalid account", "account", account, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		balance, err := wal.GetTokenBalance(r.Context(), pk)
		if err != nil {
			logger.ErrorContext(r.Context(), "failed to get token balance", "account", account, "error", err)
			writeError(w, "failed to get token balance", http.StatusBadGateway)
			return
		}

		writeJSON(w, balance, http.StatusOK)
	})
}

// handleGetTokenAccount returns a handler that derives an associated token account.
// GET /api/v1/token-accounts?mint=MINT&owner=OWNER
func handleGetTokenAccount(wal *wallet.Wallet, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		mint, err := parsePublicKey("mint", query.Get("mint"))
		if err != nil {
			logger.DebugContext(r.Context(), "invalid mint", "mint", query.Get("mint"), "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		owner, err := parsePublicKey("owner", query.Get("owner"))
		if err != nil {
			logger.DebugContext(r.Context(), "invalid owner", "owner", query.Get("owner"), "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		ata, err := wal.GetTokenAccount(mint, owner)
		if err != nil {
			logger.ErrorContext(r.Context(), "failed to derive token account", "mint", mint.String(), "owner", owner.String(), "error", err)
			writeError(w, "failed to derive token account", http.StatusInternalServerError)
			return
		}

		writeJSON(w, tokenAccountResponse{
			Address: ata.String(),
			Mint:    mint.String(),
			Owner:   owner.String(),
		}, http.StatusOK)
	})
}

// handleTransfer returns a handler that plans, signs and broadcasts a transfer.
// POST /api/v1/transfers
// When a publisher is configured, a TransferEvent is published after the node
// accepts the transaction. Publish failures are logged only.
func handleTransfer(wal *wallet.Wallet, publisher nats.Publisher, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeTransferRequest(w, r, logger)
		if !ok {
			return
		}

		plan, err := wal.PlanTransfer(r.Context(), req)
		if err != nil {
			writeTransferError(w, r, err, logger)
			return
		}

		sig, err := wal.Submit(r.Context(), plan)
		if err != nil {
			writeTransferError(w, r, err, logger)
			return
		}

		if publisher != nil {
			event := nats.FromTransferPlan(plan, sig, string(wal.Cluster()))
			if err := publisher.PublishTransfer(r.Context(), event); err != nil {
				logger.ErrorContext(r.Context(), "failed to publish transfer event",
					"signature", sig.String(),
					"error", err,
				)
			}
		}

		writeJSON(w, transferResponse{Signature: sig.String()}, http.StatusAccepted)
	})
}

// handlePreviewTransfer returns a handler that assembles a transfer without
// signing or broadcasting it.
// POST /api/v1/transfers/preview
func handlePreviewTransfer(wal *wallet.Wallet, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeTransferRequest(w, r, logger)
		if !ok {
			return
		}

		plan, err := wal.PlanTransfer(r.Context(), req)
		if err != nil {
			writeTransferError(w, r, err, logger)
			return
		}

		resp, err := planToResponse(plan)
		if err != nil {
			logger.ErrorContext(r.Context(), "failed to describe transfer plan", "error", err)
			writeError(w, "failed to describe transfer plan", http.StatusInternalServerError)
			return
		}

		writeJSON(w, resp, http.StatusOK)
	})
}

func decodeTransferRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (wallet.TransferRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req wallet.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.DebugContext(r.Context(), "failed to decode transfer request", "error", err)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, "request body too large: maximum size is 1MB", http.StatusBadRequest)
			return req, false
		}
		writeError(w, "invalid request body: must be valid JSON", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// writeTransferError maps malformed requests to 400 and everything that
// happened after validation to 502.
func writeTransferError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if wallet.IsValidationError(err) {
		logger.DebugContext(r.Context(), "invalid transfer request", "error", err)
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.ErrorContext(r.Context(), "transfer failed", "error", err)
	writeError(w, err.Error(), http.StatusBadGateway)
}

type tokenAccountResponse struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
}

type transferResponse struct {
	Signature string `json:"signature"`
}

// transferPlanResponse is the JSON response format for a previewed transfer.
type transferPlanResponse struct {
	Kind         string                      `json:"kind"`
	From         string                      `json:"from"`
	To           string                      `json:"to"`
	TokenMint    string                      `json:"token_mint,omitempty"`
	Amount       uint64                      `json:"amount"`
	FeePayer     string                      `json:"fee_payer"`
	Instructions []solana.InstructionSummary `json:"instructions"`
}

func planToResponse(plan *wallet.TransferPlan) (*transferPlanResponse, error) {
	instructions, err := solana.DescribeInstructions(plan.Instructions)
	if err != nil {
		return nil, err
	}
	return &transferPlanResponse{
		Kind:         plan.Kind,
		From:         plan.From,
		To:           plan.To,
		TokenMint:    plan.TokenMint,
		Amount:       plan.Amount,
		FeePayer:     plan.FeePayer.String(),
		Instructions: instructions,
	}, nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// parsePublicKey validates a query or path address and decodes it.
func parsePublicKey(field, address string) (solanago.PublicKey, error) {
	if err := validateAddress(address); err != nil {
		return solanago.PublicKey{}, errorf("invalid %s: %v", field, err)
	}
	pk, err := solanago.PublicKeyFromBase58(address)
	if err != nil {
		return solanago.PublicKey{}, errorf("invalid %s: not a valid public key", field)
	}
	return pk, nil
}

// validateAddress validates a wallet address for security and format.
func validateAddress(address string) error {
	if address == "" {
		return errorf("address is required")
	}

	if len(address) > maxAddressLength {
		return errorf("address too long: maximum length is %d characters", maxAddressLength)
	}

	// Check for null bytes and control characters
	for _, r := range address {
		if r == 0 || unicode.IsControl(r) {
			return errorf("invalid characters in address: control characters not allowed")
		}
	}

	if !validAddressRegex.MatchString(address) {
		return errorf("invalid address format: must contain only valid base58 characters")
	}

	return nil
}

// errorf is a helper to format error strings.
func errorf(format string, args ...interface{}) error {
	return &validationError{msg: strings.TrimSpace(fmt.Sprintf(format, args...))}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}
