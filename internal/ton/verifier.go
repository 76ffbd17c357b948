package ton

import (
	"context"
	"fmt"
	"math/big"

	"aetheria_skylands/pkg/logger"
	"go.uber.org/zap"
)

type VerifierConfig struct {
	// ReceivingWallet is the platform wallet payments arrive at.
	ReceivingWallet string `yaml:"receivingWallet"`
	// MinPayment is the qualifying threshold as a decimal string in nanoton.
	MinPayment string `yaml:"minPayment"`
	// TxWindow bounds how many recent transactions are inspected. A payment
	// older than the window is reported as not found; widen the window here
	// if client retry delays make that a problem in practice.
	TxWindow int `yaml:"txWindow"`
}

type transactionLister interface {
	GetTransactions(ctx context.Context, address string, limit int) (*TransactionsResponse, error)
}

// Verifier answers whether a qualifying payment from a given wallet to the
// platform wallet exists among recent transactions. It is a read-only probe
// and safe to call on every poll attempt.
type Verifier struct {
	client     transactionLister
	receiving  string
	minPayment *big.Int
	txWindow   int
}

func NewVerifier(client *Client, cfg VerifierConfig) (*Verifier, error) {
	min, ok := new(big.Int).SetString(cfg.MinPayment, 10)
	if !ok || min.Sign() < 0 {
		return nil, fmt.Errorf("invalid minimum payment amount %q", cfg.MinPayment)
	}
	if cfg.ReceivingWallet == "" {
		return nil, fmt.Errorf("receiving wallet is required")
	}

	window := cfg.TxWindow
	if window <= 0 {
		window = defaultWindow
	}

	return &Verifier{
		client:     client,
		receiving:  cfg.ReceivingWallet,
		minPayment: min,
		txWindow:   window,
	}, nil
}

// HasQualifyingPayment reports whether at least one incoming transfer from
// walletAddress with value >= the configured minimum appears in the recent
// transaction window of the receiving wallet.
//
// Indexer failures and malformed payloads are reported as "not verified
// yet", never as an error: from the polling client's perspective the states
// are indistinguishable and both mean "try again shortly".
func (v *Verifier) HasQualifyingPayment(ctx context.Context, walletAddress string) bool {
	log := logger.Logger()

	resp, err := v.client.GetTransactions(ctx, v.receiving, v.txWindow)
	if err != nil {
		log.Warn("on-chain payment lookup failed",
			zap.String("wallet", walletAddress),
			zap.Error(err))
		return false
	}

	want := comparableAddress(walletAddress)

	for _, tx := range resp.Result {
		if tx.InMsg == nil || tx.InMsg.Source == "" {
			continue
		}
		if comparableAddress(tx.InMsg.Source) != want {
			continue
		}

		value, ok := new(big.Int).SetString(tx.InMsg.Value, 10)
		if !ok {
			log.Warn("unparseable transfer value in indexer response",
				zap.String("value", tx.InMsg.Value))
			continue
		}
		if value.Cmp(v.minPayment) >= 0 {
			log.Info("qualifying on-chain payment found",
				zap.String("wallet", walletAddress),
				zap.String("value", tx.InMsg.Value))
			return true
		}
	}

	return false
}
