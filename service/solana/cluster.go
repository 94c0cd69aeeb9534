package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

// Cluster names a Solana network.
type Cluster string

const (
	Devnet      Cluster = "devnet"
	Testnet     Cluster = "testnet"
	MainnetBeta Cluster = "mainnet-beta"
	Localnet    Cluster = "localnet"
)

// DefaultCluster is the public test network used when nothing is configured.
const DefaultCluster = Devnet

// ParseCluster validates a cluster name.
func ParseCluster(name string) (Cluster, error) {
	switch c := Cluster(name); c {
	case Devnet, Testnet, MainnetBeta, Localnet:
		return c, nil
	case "mainnet":
		return MainnetBeta, nil
	default:
		return "", fmt.Errorf("unknown cluster %q: must be one of devnet, testnet, mainnet-beta, localnet", name)
	}
}

// RPCURL returns the public RPC endpoint for the cluster.
func (c Cluster) RPCURL() string {
	switch c {
	case Testnet:
		return rpc.TestNet_RPC
	case MainnetBeta:
		return rpc.MainNetBeta_RPC
	case Localnet:
		return rpc.LocalNet_RPC
	default:
		return rpc.DevNet_RPC
	}
}

// ParseCommitment validates a commitment level name.
func ParseCommitment(name string) (rpc.CommitmentType, error) {
	switch c := rpc.CommitmentType(name); c {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return c, nil
	default:
		return "", fmt.Errorf("unknown commitment %q: must be one of processed, confirmed, finalized", name)
	}
}
