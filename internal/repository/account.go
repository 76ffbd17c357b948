package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aetheria_skylands/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const uniqueViolationCode = "23505"

type Account struct {
	WalletAddress      string    `db:"wallet_address"`
	Username           string    `db:"username"`
	ReferralCode       string    `db:"referral_code"`
	ReferredBy         *string   `db:"referred_by"`
	InviteCount        int       `db:"invite_count"`
	Points             int       `db:"points"`
	HasPaidEarlyAccess bool      `db:"has_paid_early_access"`
	TwitterFollowed    bool      `db:"twitter_followed"`
	TelegramFollowed   bool      `db:"telegram_followed"`
	HasMintedNFT       bool      `db:"has_minted_nft"`
	NFTReferralsCount  int       `db:"nft_referrals_count"`
	IsVip              bool      `db:"is_vip"`
	CreatedAt          time.Time `db:"created_at"`
}

func (a *Account) toModel() *model.Account {
	return &model.Account{
		WalletAddress:      a.WalletAddress,
		Username:           a.Username,
		ReferralCode:       a.ReferralCode,
		ReferredBy:         a.ReferredBy,
		InviteCount:        a.InviteCount,
		Points:             a.Points,
		HasPaidEarlyAccess: a.HasPaidEarlyAccess,
		TwitterFollowed:    a.TwitterFollowed,
		TelegramFollowed:   a.TelegramFollowed,
		HasMintedNFT:       a.HasMintedNFT,
		NFTReferralsCount:  a.NFTReferralsCount,
		IsVip:              a.IsVip,
		CreatedAt:          a.CreatedAt,
	}
}

var socialColumns = map[model.SocialPlatform]string{
	model.PlatformTwitter:  "twitter_followed",
	model.PlatformTelegram: "telegram_followed",
}

// CreateAccount inserts a new account and, when the account was referred,
// credits the referrer inside the same transaction so the invite counter and
// points can never be applied twice for one registration.
func (r *Repository) CreateAccount(ctx context.Context, account *model.Account, referralReward int) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if account.ReferredBy != nil {
			query, args, err := squirrel.
				Select("wallet_address").
				From("accounts").
				Where(squirrel.Eq{"referral_code": *account.ReferredBy}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build referrer select query: %w", err)
			}

			var referrerWallet string
			err = tx.GetContext(ctx, &referrerWallet, query, args...)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrReferrerNotFound
				}
				return fmt.Errorf("failed to look up referrer: %w", err)
			}
		}

		query, args, err := squirrel.
			Insert("accounts").
			SetMap(map[string]interface{}{
				"wallet_address": account.WalletAddress,
				"username":       account.Username,
				"referral_code":  account.ReferralCode,
				"referred_by":    account.ReferredBy,
				"created_at":     account.CreatedAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build account insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to insert account: %w", err)
		}

		if account.ReferredBy != nil {
			updateQuery, updateArgs, err := squirrel.
				Update("accounts").
				Set("invite_count", squirrel.Expr("invite_count + 1")).
				Set("points", squirrel.Expr("points + ?", referralReward)).
				Where(squirrel.Eq{"referral_code": *account.ReferredBy}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build referrer update query: %w", err)
			}

			_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
			if err != nil {
				return fmt.Errorf("failed to update referrer: %w", err)
			}
		}

		return nil
	})
}

func (r *Repository) GetAccountByWallet(ctx context.Context, walletAddress string) (*model.Account, error) {
	var account Account
	query, args, err := squirrel.
		Select("*").
		From("accounts").
		Where(squirrel.Eq{"wallet_address": walletAddress}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &account, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return account.toModel(), nil
}

// SetEarlyAccessPaid flips has_paid_early_access once. The conditional
// WHERE clause is the concurrency control: of N concurrent callers only one
// observes flipped=true, everyone else sees the flag already set.
func (r *Repository) SetEarlyAccessPaid(ctx context.Context, walletAddress string) (bool, error) {
	query, args, err := squirrel.
		Update("accounts").
		Set("has_paid_early_access", true).
		Where(squirrel.Eq{
			"wallet_address":        walletAddress,
			"has_paid_early_access": false,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to set early access paid: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// SetSocialFollowed flips one of the one-way social quest flags.
func (r *Repository) SetSocialFollowed(ctx context.Context, walletAddress string, platform model.SocialPlatform) (bool, error) {
	column, ok := socialColumns[platform]
	if !ok {
		return false, fmt.Errorf("unknown social platform %q", platform)
	}

	query, args, err := squirrel.
		Update("accounts").
		Set(column, true).
		Where(squirrel.Eq{
			"wallet_address": walletAddress,
			column:           false,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to set social followed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkMinted flips has_minted_nft once the payment and social gates are
// satisfied, and credits the referrer in the same transaction. The gate
// columns are re-checked in the WHERE clause so a concurrent mint or an
// unpaid account cannot slip through between the caller's read and this
// write.
func (r *Repository) MarkMinted(ctx context.Context, walletAddress string, mintReferralReward, vipThreshold int) (bool, error) {
	flipped := false

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("accounts").
			Set("has_minted_nft", true).
			Where(squirrel.Eq{
				"wallet_address":        walletAddress,
				"has_paid_early_access": true,
				"twitter_followed":      true,
				"telegram_followed":     true,
				"has_minted_nft":        false,
			}).
			Suffix("RETURNING referred_by").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build mint update query: %w", err)
		}

		var referredBy *string
		err = tx.GetContext(ctx, &referredBy, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to mark minted: %w", err)
		}
		flipped = true

		if referredBy != nil {
			updateQuery, updateArgs, err := squirrel.
				Update("accounts").
				Set("nft_referrals_count", squirrel.Expr("nft_referrals_count + 1")).
				Set("points", squirrel.Expr("points + ?", mintReferralReward)).
				Set("is_vip", squirrel.Expr("nft_referrals_count + 1 >= ?", vipThreshold)).
				Where(squirrel.Eq{"referral_code": *referredBy}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build referrer mint update query: %w", err)
			}

			_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
			if err != nil {
				return fmt.Errorf("failed to update referrer mint counters: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return flipped, nil
}

func (r *Repository) GetTopAccounts(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	type row struct {
		Username    string `db:"username"`
		Points      int    `db:"points"`
		InviteCount int    `db:"invite_count"`
	}

	query, args, err := squirrel.
		Select("username", "points", "invite_count").
		From("accounts").
		OrderBy("points DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []row
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}

	entries := make([]*model.LeaderboardEntry, len(rows))
	for i, r := range rows {
		entries[i] = &model.LeaderboardEntry{
			Username:    r.Username,
			Points:      r.Points,
			InviteCount: r.InviteCount,
		}
	}

	return entries, nil
}

func (r *Repository) GetAccountReferrals(ctx context.Context, walletAddress string) ([]*model.AccountReferral, error) {
	account, err := r.GetAccountByWallet(ctx, walletAddress)
	if err != nil {
		return nil, err
	}

	type row struct {
		Username     string    `db:"username"`
		Points       int       `db:"points"`
		HasMintedNFT bool      `db:"has_minted_nft"`
		CreatedAt    time.Time `db:"created_at"`
	}

	query, args, err := squirrel.
		Select("username", "points", "has_minted_nft", "created_at").
		From("accounts").
		Where(squirrel.Eq{"referred_by": account.ReferralCode}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build referrals query: %w", err)
	}

	var rows []row
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get account referrals: %w", err)
	}

	refs := make([]*model.AccountReferral, len(rows))
	for i, r := range rows {
		refs[i] = &model.AccountReferral{
			Username:     r.Username,
			Points:       r.Points,
			HasMintedNFT: r.HasMintedNFT,
			CreatedAt:    r.CreatedAt,
		}
	}

	return refs, nil
}

// RecordPaymentCheck keeps an audit trail of verification attempts. Failures
// here are the caller's to log and ignore; the audit row must never block a
// payment confirmation.
func (r *Repository) RecordPaymentCheck(ctx context.Context, walletAddress string, verified bool) error {
	query, args, err := squirrel.
		Insert("payment_checks").
		SetMap(map[string]interface{}{
			"id":             uuid.New(),
			"wallet_address": walletAddress,
			"verified":       verified,
			"checked_at":     time.Now().UTC(),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build payment check insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to record payment check: %w", err)
	}

	return nil
}
