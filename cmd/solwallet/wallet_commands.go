package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/brojonat/solwallet/service/solana"
	"github.com/brojonat/solwallet/service/wallet"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

// localWallet builds a wallet that talks to the cluster directly.
// The keypair is only loaded when requireKeypair is set.
func localWallet(c *cli.Context, requireKeypair bool) (*wallet.Wallet, error) {
	logger := newLogger(c.String("log-level"))

	cluster, err := solana.ParseCluster(c.String("cluster"))
	if err != nil {
		return nil, err
	}
	commitment, err := solana.ParseCommitment(c.String("commitment"))
	if err != nil {
		return nil, err
	}

	rpcURL := c.String("rpc-url")
	if rpcURL == "" {
		rpcURL = cluster.RPCURL()
	}
	conn := solana.NewClient(solana.NewRPCClient(rpcURL), cluster, commitment, nil, logger)

	var session wallet.Session
	if requireKeypair {
		path := c.String("keypair")
		if path == "" {
			return nil, fmt.Errorf("keypair is required (set WALLET_KEYPAIR_PATH env var or use --keypair)")
		}
		kp, err := wallet.LoadKeypairSession(path)
		if err != nil {
			return nil, err
		}
		session = kp
	}

	return wallet.New(conn, session, nil, logger), nil
}

func newLogger(levelStr string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func connectCommand() *cli.Command {
	return &cli.Command{
		Name:  "connect",
		Usage: "Load the keypair and show the connected public key",
		Action: func(c *cli.Context) error {
			w, err := localWallet(c, true)
			if err != nil {
				return err
			}

			result, err := w.Connect(c.Context)
			if err != nil {
				return err
			}

			return printResult(c, result, func(out io.Writer) {
				fmt.Fprintf(out, "✓ Wallet connected\n")
				fmt.Fprintf(out, "  Public Key: %s\n", result.PublicKey)
				fmt.Fprintf(out, "  Cluster:    %s\n", w.Cluster())
			})
		},
	}
}

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Show the balance of a token account",
		ArgsUsage: "TOKEN_ACCOUNT",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("token account address is required")
			}

			account, err := solanago.PublicKeyFromBase58(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("invalid token account %q: %w", c.Args().Get(0), err)
			}

			w, err := localWallet(c, false)
			if err != nil {
				return err
			}

			balance, err := w.GetTokenBalance(c.Context, account)
			if err != nil {
				return fmt.Errorf("failed to get token balance: %w", err)
			}

			return printResult(c, balance, func(out io.Writer) {
				printBalance(out, balance.Account, balance.UIAmountString, balance.Amount, balance.Decimals)
			})
		},
	}
}

func tokenAccountCommand() *cli.Command {
	return &cli.Command{
		Name:  "token-account",
		Usage: "Derive the associated token account of an owner for a mint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mint", Usage: "Token mint address", Required: true},
			&cli.StringFlag{Name: "owner", Usage: "Owner address, defaults to the keypair's public key"},
		},
		Action: func(c *cli.Context) error {
			mint, err := solanago.PublicKeyFromBase58(c.String("mint"))
			if err != nil {
				return fmt.Errorf("invalid mint %q: %w", c.String("mint"), err)
			}

			ownerAddr := c.String("owner")
			w, err := localWallet(c, ownerAddr == "")
			if err != nil {
				return err
			}

			var owner solanago.PublicKey
			if ownerAddr == "" {
				result, err := w.Connect(c.Context)
				if err != nil {
					return err
				}
				ownerAddr = result.PublicKey
			}
			owner, err = solanago.PublicKeyFromBase58(ownerAddr)
			if err != nil {
				return fmt.Errorf("invalid owner %q: %w", ownerAddr, err)
			}

			ata, err := w.GetTokenAccount(mint, owner)
			if err != nil {
				return err
			}

			result := tokenAccountView{Address: ata.String(), Mint: mint.String(), Owner: owner.String()}
			return printResult(c, result, func(out io.Writer) {
				fmt.Fprintf(out, "%s\n", result.Address)
			})
		},
	}
}

func transferFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "to", Usage: "Recipient wallet address", Required: true},
		&cli.StringFlag{Name: "amount", Usage: "Amount in whole units, e.g. 1.5", Required: true},
		&cli.StringFlag{Name: "from", Usage: "Sender address, defaults to the connected wallet"},
		&cli.StringFlag{Name: "token", Usage: "SPL token mint, omit for native SOL"},
		&cli.BoolFlag{Name: "dry-run", Usage: "Assemble and print the transfer without sending it"},
		&cli.StringFlag{Name: "require", Usage: "jq filter over the planned transfer that must be truthy to send"},
	}
}

func transferCommand() *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer SOL or an SPL token from the keypair's wallet",
		Flags: transferFlags(),
		Action: func(c *cli.Context) error {
			amount, err := decimal.NewFromString(c.String("amount"))
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", c.String("amount"), err)
			}

			w, err := localWallet(c, true)
			if err != nil {
				return err
			}

			result, err := w.Connect(c.Context)
			if err != nil {
				return err
			}

			from := c.String("from")
			if from == "" {
				from = result.PublicKey
			}

			req := wallet.TransferRequest{
				From:         from,
				To:           c.String("to"),
				TokenAddress: c.String("token"),
				Amount:       amount,
			}

			plan, err := w.PlanTransfer(c.Context, req)
			if err != nil {
				return err
			}

			view, err := newPlanView(plan)
			if err != nil {
				return err
			}

			if err := checkRequire(c.String("require"), view); err != nil {
				return err
			}

			if c.Bool("dry-run") {
				return printResult(c, view, func(out io.Writer) {
					printPlan(out, view)
				})
			}

			sig, err := w.Submit(c.Context, plan)
			if err != nil {
				return err
			}

			resp := transferView{Signature: sig.String(), Cluster: string(w.Cluster())}
			return printResult(c, resp, func(out io.Writer) {
				fmt.Fprintf(out, "✓ Transfer sent\n")
				fmt.Fprintf(out, "  Signature: %s\n", resp.Signature)
				fmt.Fprintf(out, "  Cluster:   %s\n", resp.Cluster)
			})
		},
	}
}

// checkRequire evaluates a jq guard against the planned transfer.
func checkRequire(filter string, view interface{}) error {
	if filter == "" {
		return nil
	}

	code, err := compileJQ(filter)
	if err != nil {
		return err
	}
	input, err := toJQInput(view)
	if err != nil {
		return err
	}

	v, ok := code.Run(input).Next()
	if !ok {
		return fmt.Errorf("transfer blocked: --require %q produced no result", filter)
	}
	if err, isErr := v.(error); isErr {
		return fmt.Errorf("transfer blocked: --require %q failed: %w", filter, err)
	}
	if !isTruthy(v) {
		return fmt.Errorf("transfer blocked: --require %q is false", filter)
	}
	return nil
}

type tokenAccountView struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
}

type transferView struct {
	Signature string `json:"signature"`
	Cluster   string `json:"cluster,omitempty"`
}

// planView is the printable form of a transfer plan.
type planView struct {
	Kind         string                      `json:"kind"`
	From         string                      `json:"from"`
	To           string                      `json:"to"`
	TokenMint    string                      `json:"token_mint,omitempty"`
	Amount       uint64                      `json:"amount"`
	FeePayer     string                      `json:"fee_payer"`
	Instructions []solana.InstructionSummary `json:"instructions"`
}

func newPlanView(plan *wallet.TransferPlan) (*planView, error) {
	instructions, err := solana.DescribeInstructions(plan.Instructions)
	if err != nil {
		return nil, err
	}
	return &planView{
		Kind:         plan.Kind,
		From:         plan.From,
		To:           plan.To,
		TokenMint:    plan.TokenMint,
		Amount:       plan.Amount,
		FeePayer:     plan.FeePayer.String(),
		Instructions: instructions,
	}, nil
}

func printPlan(out io.Writer, view *planView) {
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(out, "Transfer Plan (%s, not sent)\n", view.Kind)
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(out, "From:      %s\n", view.From)
	fmt.Fprintf(out, "To:        %s\n", view.To)
	if view.TokenMint != "" {
		fmt.Fprintf(out, "Mint:      %s\n", view.TokenMint)
	}
	fmt.Fprintf(out, "Amount:    %d base units\n", view.Amount)
	fmt.Fprintf(out, "Fee Payer: %s\n", view.FeePayer)
	fmt.Fprintf(out, "\nInstructions:\n")
	for i, inst := range view.Instructions {
		fmt.Fprintf(out, "  %d. %s %s\n", i+1, inst.Program, inst.Type)
		if inst.Amount != nil {
			fmt.Fprintf(out, "     amount: %d\n", *inst.Amount)
		}
	}
}

func printBalance(out io.Writer, account, uiAmount, amount string, decimals uint8) {
	fmt.Fprintf(out, "Account:  %s\n", account)
	fmt.Fprintf(out, "Balance:  %s\n", uiAmount)
	fmt.Fprintf(out, "Raw:      %s (decimals: %d)\n", amount, decimals)
}
