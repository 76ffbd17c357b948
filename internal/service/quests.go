package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aetheria_skylands/internal/model"
	"aetheria_skylands/internal/repository"
)

// QuestService owns the social quest flags and the mint step, the last
// gate of the paid → socials → mint precedence chain.
type QuestService struct {
	repo    AccountRepository
	rewards RewardConfig
}

func NewQuestService(repo AccountRepository, rewards RewardConfig) *QuestService {
	return &QuestService{
		repo:    repo,
		rewards: rewards.withDefaults(),
	}
}

// CompleteSocialQuest sets one of the one-way social flags. Completion is
// independent of payment status and repeating it is a no-op.
func (s *QuestService) CompleteSocialQuest(ctx context.Context, walletAddress string, platform model.SocialPlatform) (*model.Account, error) {
	if !platform.Valid() {
		return nil, ErrInvalidPlatform
	}
	walletAddress = strings.ToLower(walletAddress)

	if _, err := s.repo.GetAccountByWallet(ctx, walletAddress); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if _, err := s.repo.SetSocialFollowed(ctx, walletAddress, platform); err != nil {
		return nil, fmt.Errorf("failed to set social followed: %w", err)
	}

	account, err := s.repo.GetAccountByWallet(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}
	return account, nil
}

// MintNFT flips has_minted_nft once payment and both social quests are
// complete. The second return value reports whether this call performed the
// mint; a repeat call returns the already-minted account with false.
func (s *QuestService) MintNFT(ctx context.Context, walletAddress string) (*model.Account, bool, error) {
	walletAddress = strings.ToLower(walletAddress)

	account, err := s.repo.GetAccountByWallet(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrAccountNotFound
		}
		return nil, false, fmt.Errorf("failed to get account: %w", err)
	}

	if account.HasMintedNFT {
		return account, false, nil
	}
	if !account.HasPaidEarlyAccess {
		return nil, false, ErrEarlyAccessRequired
	}
	if !account.TwitterFollowed || !account.TelegramFollowed {
		return nil, false, ErrSocialQuestsIncomplete
	}

	minted, err := s.repo.MarkMinted(ctx, walletAddress, s.rewards.MintReferralPoints, s.rewards.VipThreshold)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark minted: %w", err)
	}

	account, err = s.repo.GetAccountByWallet(ctx, walletAddress)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload account: %w", err)
	}

	// minted=false here means a concurrent call won the conditional
	// update; the caller sees the same already-minted state either way.
	return account, minted, nil
}
