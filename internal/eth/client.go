// Package eth wraps the go-ethereum RPC client for the one on-chain
// operation this solver performs: a view call to the router's get_dy.
package eth

import (
	"context"
	"fmt"
	"os"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/joho/godotenv"
)

// Client wraps a JSON-RPC node connection.
type Client struct {
	rpc *ethclient.Client
}

// NewClient dials nodeURL. If nodeURL is empty, it falls back to the
// NODE_URL environment variable (loaded from .env via godotenv, matching
// every cmd/ entrypoint's convention).
func NewClient(nodeURL string) (*Client, error) {
	if nodeURL == "" {
		_ = godotenv.Load()
		nodeURL = os.Getenv("NODE_URL")
	}
	if nodeURL == "" {
		return nil, fmt.Errorf("eth: NODE_URL not set")
	}

	rawRPC, err := rpc.Dial(nodeURL)
	if err != nil {
		return nil, fmt.Errorf("eth: dial %s: %w", nodeURL, err)
	}

	return &Client{rpc: ethclient.NewClient(rawRPC)}, nil
}

// CallContract performs eth_call with no "from" and no "value".
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.rpc.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}
