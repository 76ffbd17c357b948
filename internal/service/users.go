package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"aetheria_skylands/internal/model"
	"aetheria_skylands/internal/repository"
)

const leaderboardSize = 100

type UserService struct {
	repo    AccountRepository
	rewards RewardConfig
}

func NewUserService(repo AccountRepository, rewards RewardConfig) *UserService {
	return &UserService{
		repo:    repo,
		rewards: rewards.withDefaults(),
	}
}

// ReferralCodeFor derives the account's referral code from its username.
// The derivation is deterministic so the code never needs to be stored
// anywhere but on the account row itself.
func ReferralCodeFor(username string) string {
	slug := strings.Builder{}
	for _, r := range strings.ToLower(username) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			slug.WriteRune(r)
		}
	}

	sum := sha256.Sum256([]byte(username))
	return fmt.Sprintf("%s-%s", slug.String(), hex.EncodeToString(sum[:])[:6])
}

func (s *UserService) RegisterAccount(ctx context.Context, walletAddress, username string, referredBy *string) (*model.Account, error) {
	walletAddress = strings.ToLower(strings.TrimSpace(walletAddress))
	username = strings.TrimSpace(username)
	if walletAddress == "" || username == "" {
		return nil, fmt.Errorf("wallet address and username are required")
	}

	code := ReferralCodeFor(username)
	if referredBy != nil {
		if *referredBy == "" {
			referredBy = nil
		} else if *referredBy == code {
			return nil, ErrSelfReferral
		}
	}

	account := &model.Account{
		WalletAddress: walletAddress,
		Username:      username,
		ReferralCode:  code,
		ReferredBy:    referredBy,
		CreatedAt:     time.Now().UTC(),
	}

	err := s.repo.CreateAccount(ctx, account, s.rewards.ReferralPoints)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, ErrAccountExists
		case errors.Is(err, repository.ErrReferrerNotFound):
			return nil, ErrUnknownReferralCode
		default:
			return nil, fmt.Errorf("failed to register account: %w", err)
		}
	}

	return account, nil
}

func (s *UserService) GetAccount(ctx context.Context, walletAddress string) (*model.Account, error) {
	account, err := s.repo.GetAccountByWallet(ctx, strings.ToLower(walletAddress))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *UserService) GetLeaderboard(ctx context.Context) ([]*model.LeaderboardEntry, error) {
	entries, err := s.repo.GetTopAccounts(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}
	return entries, nil
}

func (s *UserService) GetAccountReferrals(ctx context.Context, walletAddress string) ([]*model.AccountReferral, error) {
	refs, err := s.repo.GetAccountReferrals(ctx, strings.ToLower(walletAddress))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account referrals: %w", err)
	}
	return refs, nil
}
