package main

import (
	"fmt"
	"log"
	"os"

	"github.com/brojonat/solwallet/service/solana"
	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "solwallet",
		Usage: "Solana wallet CLI for balances and transfers",
		Description: `A command-line tool for a Solana wallet.

Local commands talk to the cluster directly using a solana-keygen keypair file.
Remote commands go through a running solwallet server.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			connectCommand(),
			balanceCommand(),
			tokenAccountCommand(),
			transferCommand(),
			remoteCommands(),
			versionCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cluster",
				Usage:   "Solana cluster (devnet, testnet, mainnet-beta, localnet)",
				EnvVars: []string{"SOLANA_CLUSTER"},
				Value:   string(solana.DefaultCluster),
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "RPC endpoint, overrides the cluster's public endpoint",
				EnvVars: []string{"SOLANA_RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "commitment",
				Usage:   "Commitment for reads and preflight (processed, confirmed, finalized)",
				EnvVars: []string{"SOLANA_COMMITMENT"},
				Value:   "processed",
			},
			&cli.StringFlag{
				Name:    "keypair",
				Aliases: []string{"k"},
				Usage:   "Path to a solana-keygen keypair file",
				EnvVars: []string{"WALLET_KEYPAIR_PATH"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level for stderr diagnostics",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "error",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq filter applied to the JSON output",
			},
		},
	}
}
