package model

import "time"

// Account is one record per connected wallet. WalletAddress is stored
// lowercased and never changes after creation.
type Account struct {
	WalletAddress      string
	Username           string
	ReferralCode       string
	ReferredBy         *string
	InviteCount        int
	Points             int
	HasPaidEarlyAccess bool
	TwitterFollowed    bool
	TelegramFollowed   bool
	HasMintedNFT       bool
	NFTReferralsCount  int
	IsVip              bool
	CreatedAt          time.Time
}

type LeaderboardEntry struct {
	Username    string
	Points      int
	InviteCount int
}

type AccountReferral struct {
	Username     string
	Points       int
	HasMintedNFT bool
	CreatedAt    time.Time
}

// SocialPlatform names a social quest flag on the account.
type SocialPlatform string

const (
	PlatformTwitter  SocialPlatform = "twitter"
	PlatformTelegram SocialPlatform = "telegram"
)

func (p SocialPlatform) Valid() bool {
	return p == PlatformTwitter || p == PlatformTelegram
}
