package service

import (
	"context"
	"testing"

	"aetheria_skylands/internal/model"
	"aetheria_skylands/internal/repository"
	"aetheria_skylands/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReferralCodeFor(t *testing.T) {
	code := ReferralCodeFor("Alice")
	assert.Equal(t, code, ReferralCodeFor("Alice"), "derivation must be deterministic")
	assert.NotEqual(t, code, ReferralCodeFor("alice"), "distinct usernames get distinct codes")
	assert.Contains(t, code, "alice-")
}

func TestUserService_RegisterAccount(t *testing.T) {
	aliceCode := ReferralCodeFor("alice")

	tests := []struct {
		name          string
		wallet        string
		username      string
		referredBy    *string
		setupMocks    func(repo *mocks.MockAccountRepository)
		expectedError error
	}{
		{
			name:     "Plain registration",
			wallet:   "0:AA11",
			username: "bob",
			setupMocks: func(repo *mocks.MockAccountRepository) {
				repo.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc *model.Account) bool {
					return acc.WalletAddress == "0:aa11" &&
						acc.Username == "bob" &&
						acc.ReferralCode == ReferralCodeFor("bob") &&
						acc.ReferredBy == nil
				}), 500).Return(nil)
			},
		},
		{
			name:       "Referred registration passes reward amount",
			wallet:     "0:bb22",
			username:   "carol",
			referredBy: &aliceCode,
			setupMocks: func(repo *mocks.MockAccountRepository) {
				repo.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc *model.Account) bool {
					return acc.ReferredBy != nil && *acc.ReferredBy == aliceCode
				}), 500).Return(nil)
			},
		},
		{
			name:          "Self-referral rejected",
			wallet:        "0:cc33",
			username:      "alice",
			referredBy:    &aliceCode,
			setupMocks:    func(repo *mocks.MockAccountRepository) {},
			expectedError: ErrSelfReferral,
		},
		{
			name:       "Unknown referral code",
			wallet:     "0:dd44",
			username:   "dave",
			referredBy: &aliceCode,
			setupMocks: func(repo *mocks.MockAccountRepository) {
				repo.On("CreateAccount", mock.Anything, mock.Anything, 500).
					Return(repository.ErrReferrerNotFound)
			},
			expectedError: ErrUnknownReferralCode,
		},
		{
			name:     "Duplicate wallet or username",
			wallet:   "0:ee55",
			username: "eve",
			setupMocks: func(repo *mocks.MockAccountRepository) {
				repo.On("CreateAccount", mock.Anything, mock.Anything, 500).
					Return(repository.ErrAlreadyExists)
			},
			expectedError: ErrAccountExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockAccountRepository{}
			svc := NewUserService(repo, RewardConfig{})

			tt.setupMocks(repo)

			account, err := svc.RegisterAccount(context.Background(), tt.wallet, tt.username, tt.referredBy)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, account)
				assert.False(t, account.CreatedAt.IsZero())
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_RegisterAccount_EmptyReferralCodeTreatedAsAbsent(t *testing.T) {
	repo := &mocks.MockAccountRepository{}
	svc := NewUserService(repo, RewardConfig{})

	empty := ""
	repo.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc *model.Account) bool {
		return acc.ReferredBy == nil
	}), 500).Return(nil)

	_, err := svc.RegisterAccount(context.Background(), "0:ff66", "frank", &empty)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUserService_GetLeaderboard(t *testing.T) {
	repo := &mocks.MockAccountRepository{}
	svc := NewUserService(repo, RewardConfig{})

	repo.On("GetTopAccounts", mock.Anything, 100).
		Return([]*model.LeaderboardEntry{
			{Username: "alice", Points: 1500, InviteCount: 3},
			{Username: "bob", Points: 500, InviteCount: 1},
		}, nil)

	entries, err := svc.GetLeaderboard(context.Background())
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Username)
	repo.AssertExpectations(t)
}
