package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aetheria_skylands/internal/model"
	"aetheria_skylands/internal/repository"
	"aetheria_skylands/pkg/logger"

	"go.uber.org/zap"
)

// PaymentStatus distinguishes a flip performed by this call from one that
// already happened on an earlier call or a concurrent one.
type PaymentStatus string

const (
	PaymentStatusAlreadyPaid PaymentStatus = "already_paid"
	PaymentStatusPaidNow     PaymentStatus = "paid_now"
)

// PaymentService reconciles the on-chain payment state with the account
// record: it consults the verifier and advances has_paid_early_access
// exactly once.
type PaymentService struct {
	repo     AccountRepository
	verifier PaymentVerifier
}

func NewPaymentService(repo AccountRepository, verifier PaymentVerifier) *PaymentService {
	return &PaymentService{
		repo:     repo,
		verifier: verifier,
	}
}

// ConfirmEarlyAccessPayment advances the account's paid flag when a
// qualifying payment is visible on chain.
//
// Already-paid accounts short-circuit without touching the indexer, so
// repeated polling after confirmation is free. An unverified payment is
// reported as ErrPaymentPending, which the client poll loop treats as
// "try again", not as a failure.
func (s *PaymentService) ConfirmEarlyAccessPayment(ctx context.Context, walletAddress string) (*model.Account, PaymentStatus, error) {
	log := logger.Logger()
	walletAddress = strings.ToLower(walletAddress)

	account, err := s.repo.GetAccountByWallet(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrAccountNotFound
		}
		return nil, "", fmt.Errorf("failed to get account: %w", err)
	}

	if account.HasPaidEarlyAccess {
		return account, PaymentStatusAlreadyPaid, nil
	}

	verified := s.verifier.HasQualifyingPayment(ctx, walletAddress)

	if err := s.repo.RecordPaymentCheck(ctx, walletAddress, verified); err != nil {
		log.Warn("failed to record payment check", zap.Error(err))
	}

	if !verified {
		return nil, "", ErrPaymentPending
	}

	flipped, err := s.repo.SetEarlyAccessPaid(ctx, walletAddress)
	if err != nil {
		return nil, "", fmt.Errorf("failed to set early access paid: %w", err)
	}

	account, err = s.repo.GetAccountByWallet(ctx, walletAddress)
	if err != nil {
		return nil, "", fmt.Errorf("failed to reload account: %w", err)
	}

	status := PaymentStatusPaidNow
	if !flipped {
		// A concurrent reconciliation won the conditional update.
		status = PaymentStatusAlreadyPaid
	}

	log.Info("early access payment confirmed",
		zap.String("wallet", walletAddress),
		zap.String("status", string(status)))

	return account, status, nil
}
