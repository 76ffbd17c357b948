package mocks

import (
	"context"

	"aetheria_skylands/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *model.Account, referralReward int) error {
	args := m.Called(ctx, account, referralReward)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccountByWallet(ctx context.Context, walletAddress string) (*model.Account, error) {
	args := m.Called(ctx, walletAddress)
	if acc := args.Get(0); acc != nil {
		return acc.(*model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) SetEarlyAccessPaid(ctx context.Context, walletAddress string) (bool, error) {
	args := m.Called(ctx, walletAddress)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SetSocialFollowed(ctx context.Context, walletAddress string, platform model.SocialPlatform) (bool, error) {
	args := m.Called(ctx, walletAddress, platform)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) MarkMinted(ctx context.Context, walletAddress string, mintReferralReward, vipThreshold int) (bool, error) {
	args := m.Called(ctx, walletAddress, mintReferralReward, vipThreshold)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) GetTopAccounts(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if entries := args.Get(0); entries != nil {
		return entries.([]*model.LeaderboardEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) GetAccountReferrals(ctx context.Context, walletAddress string) ([]*model.AccountReferral, error) {
	args := m.Called(ctx, walletAddress)
	if refs := args.Get(0); refs != nil {
		return refs.([]*model.AccountReferral), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) RecordPaymentCheck(ctx context.Context, walletAddress string, verified bool) error {
	args := m.Called(ctx, walletAddress, verified)
	return args.Error(0)
}

type MockPaymentVerifier struct {
	mock.Mock
}

func (m *MockPaymentVerifier) HasQualifyingPayment(ctx context.Context, walletAddress string) bool {
	args := m.Called(ctx, walletAddress)
	return args.Bool(0)
}
