package service

import (
	"context"
	"errors"

	"aetheria_skylands/internal/model"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountExists          = errors.New("account already exists")
	ErrUnknownReferralCode    = errors.New("unknown referral code")
	ErrSelfReferral           = errors.New("self-referral is not allowed")
	ErrPaymentPending         = errors.New("payment not verified yet")
	ErrEarlyAccessRequired    = errors.New("early access payment required")
	ErrSocialQuestsIncomplete = errors.New("social quests not completed")
	ErrInvalidPlatform        = errors.New("unknown social platform")
)

type Service struct {
	*UserService
	*PaymentService
	*QuestService
}

func NewService(userService *UserService, paymentService *PaymentService, questService *QuestService) *Service {
	return &Service{
		UserService:    userService,
		PaymentService: paymentService,
		QuestService:   questService,
	}
}

// RewardConfig carries the fixed reward amounts applied on referral events.
type RewardConfig struct {
	ReferralPoints     int `yaml:"referralPoints"`
	MintReferralPoints int `yaml:"mintReferralPoints"`
	VipThreshold       int `yaml:"vipThreshold"`
}

func (c RewardConfig) withDefaults() RewardConfig {
	if c.ReferralPoints == 0 {
		c.ReferralPoints = 500
	}
	if c.MintReferralPoints == 0 {
		c.MintReferralPoints = 1000
	}
	if c.VipThreshold == 0 {
		c.VipThreshold = 5
	}
	return c
}

type UserServiceI interface {
	RegisterAccount(ctx context.Context, walletAddress, username string, referredBy *string) (*model.Account, error)
	GetAccount(ctx context.Context, walletAddress string) (*model.Account, error)
	GetLeaderboard(ctx context.Context) ([]*model.LeaderboardEntry, error)
	GetAccountReferrals(ctx context.Context, walletAddress string) ([]*model.AccountReferral, error)
}

type PaymentServiceI interface {
	ConfirmEarlyAccessPayment(ctx context.Context, walletAddress string) (*model.Account, PaymentStatus, error)
}

type QuestServiceI interface {
	CompleteSocialQuest(ctx context.Context, walletAddress string, platform model.SocialPlatform) (*model.Account, error)
	MintNFT(ctx context.Context, walletAddress string) (*model.Account, bool, error)
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account, referralReward int) error
	GetAccountByWallet(ctx context.Context, walletAddress string) (*model.Account, error)
	SetEarlyAccessPaid(ctx context.Context, walletAddress string) (bool, error)
	SetSocialFollowed(ctx context.Context, walletAddress string, platform model.SocialPlatform) (bool, error)
	MarkMinted(ctx context.Context, walletAddress string, mintReferralReward, vipThreshold int) (bool, error)
	GetTopAccounts(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	GetAccountReferrals(ctx context.Context, walletAddress string) ([]*model.AccountReferral, error)
	RecordPaymentCheck(ctx context.Context, walletAddress string, verified bool) error
}

// PaymentVerifier is the read-only on-chain probe consulted by the payment
// service before it flips the paid flag.
type PaymentVerifier interface {
	HasQualifyingPayment(ctx context.Context, walletAddress string) bool
}
