package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brojonat/solwallet/client"
	"github.com/urfave/cli/v2"
)

func remoteCommands() *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "Run wallet operations through a solwallet server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Value:   "http://localhost:8080",
				Usage:   "HTTP server URL",
				EnvVars: []string{"SOLWALLET_SERVER_URL"},
			},
		},
		Subcommands: []*cli.Command{
			remoteConnectCommand(),
			remoteDisconnectCommand(),
			remoteBalanceCommand(),
			remoteTokenAccountCommand(),
			remoteTransferCommand(),
			healthCommand(),
		},
	}
}

func remoteClient(c *cli.Context) *client.Client {
	return client.NewClient(c.String("server"), nil, newLogger(c.String("log-level")))
}

func remoteConnectCommand() *cli.Command {
	return &cli.Command{
		Name:  "connect",
		Usage: "Connect the server's wallet session",
		Action: func(c *cli.Context) error {
			result, err := remoteClient(c).Connect(c.Context)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}

			return printResult(c, result, func(out io.Writer) {
				fmt.Fprintf(out, "✓ Wallet connected\n")
				fmt.Fprintf(out, "  Public Key: %s\n", result.PublicKey)
			})
		},
	}
}

func remoteDisconnectCommand() *cli.Command {
	return &cli.Command{
		Name:  "disconnect",
		Usage: "Disconnect the server's wallet session",
		Action: func(c *cli.Context) error {
			if err := remoteClient(c).Disconnect(c.Context); err != nil {
				return fmt.Errorf("failed to disconnect: %w", err)
			}

			return printResult(c, map[string]bool{"is_connected": false}, func(out io.Writer) {
				fmt.Fprintf(out, "✓ Wallet disconnected\n")
			})
		},
	}
}

func remoteBalanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Show the balance of a token account",
		ArgsUsage: "TOKEN_ACCOUNT",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("token account address is required")
			}

			balance, err := remoteClient(c).TokenBalance(c.Context, c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("failed to get token balance: %w", err)
			}

			return printResult(c, balance, func(out io.Writer) {
				printBalance(out, balance.Account, balance.UIAmount, balance.Amount, balance.Decimals)
			})
		},
	}
}

func remoteTokenAccountCommand() *cli.Command {
	return &cli.Command{
		Name:  "token-account",
		Usage: "Derive the associated token account of an owner for a mint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mint", Usage: "Token mint address", Required: true},
			&cli.StringFlag{Name: "owner", Usage: "Owner address", Required: true},
		},
		Action: func(c *cli.Context) error {
			account, err := remoteClient(c).TokenAccount(c.Context, c.String("mint"), c.String("owner"))
			if err != nil {
				return fmt.Errorf("failed to derive token account: %w", err)
			}

			return printResult(c, account, func(out io.Writer) {
				fmt.Fprintf(out, "%s\n", account.Address)
			})
		},
	}
}

func remoteTransferCommand() *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer SOL or an SPL token from the server's wallet",
		Flags: transferFlags(),
		Action: func(c *cli.Context) error {
			cl := remoteClient(c)

			from := c.String("from")
			if from == "" {
				result, err := cl.Connect(c.Context)
				if err != nil {
					return fmt.Errorf("failed to connect: %w", err)
				}
				from = result.PublicKey
			}

			req := client.TransferRequest{
				From:         from,
				To:           c.String("to"),
				TokenAddress: c.String("token"),
				Amount:       c.String("amount"),
			}

			if c.Bool("dry-run") || c.String("require") != "" {
				plan, err := cl.PreviewTransfer(c.Context, req)
				if err != nil {
					return fmt.Errorf("failed to preview transfer: %w", err)
				}
				if err := checkRequire(c.String("require"), plan); err != nil {
					return err
				}
				if c.Bool("dry-run") {
					return printResult(c, plan, func(out io.Writer) {
						fmt.Fprintf(out, "Transfer Plan (%s, not sent)\n", plan.Kind)
						fmt.Fprintf(out, "  From:   %s\n", plan.From)
						fmt.Fprintf(out, "  To:     %s\n", plan.To)
						fmt.Fprintf(out, "  Amount: %d base units\n", plan.Amount)
						for i, inst := range plan.Instructions {
							fmt.Fprintf(out, "  %d. %s %s\n", i+1, inst.Program, inst.Type)
						}
					})
				}
			}

			sig, err := cl.Transfer(c.Context, req)
			if err != nil {
				return fmt.Errorf("failed to transfer: %w", err)
			}

			resp := transferView{Signature: sig}
			return printResult(c, resp, func(out io.Writer) {
				fmt.Fprintf(out, "✓ Transfer sent\n")
				fmt.Fprintf(out, "  Signature: %s\n", resp.Signature)
			})
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: 5 * time.Second,
			},
		},
		Action: func(c *cli.Context) error {
			serverURL := c.String("server")
			if serverURL == "" {
				return fmt.Errorf("server is required (set SOLWALLET_SERVER_URL env var or use --server)")
			}

			httpClient := &http.Client{
				Timeout: c.Duration("timeout"),
			}

			resp, err := httpClient.Get(serverURL + "/health")
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				fmt.Fprintf(c.App.Writer, "✓ Server is healthy (status: %d)\n", resp.StatusCode)
				fmt.Fprintf(c.App.Writer, "  URL: %s\n", serverURL)
				return nil
			}

			return fmt.Errorf("server returned unhealthy status: %d", resp.StatusCode)
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "solwallet CLI\n")
			fmt.Fprintf(c.App.Writer, "  Version: %s\n", version)
			fmt.Fprintf(c.App.Writer, "  Commit:  %s\n", commit)
			fmt.Fprintf(c.App.Writer, "  Built:   %s\n", date)
			return nil
		},
	}
}
