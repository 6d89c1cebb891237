package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodshare/internal/utils"
	"foodshare/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountTableName = "foodshare.accounts"

const (
	accountUsernameIndex = "accounts_username_lower_idx"
	accountEmailIndex    = "accounts_email_lower_idx"
)

var accountColumns = utils.StructTagValues(types.Account{})

type AccountRepository struct {
	db DB
}

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Account(ctx context.Context, accountID string) (*types.Account, error) {
	return r.accountWhere(ctx, sq.Eq{"id": accountID})
}

func (r *AccountRepository) AccountByEmail(ctx context.Context, email string) (*types.Account, error) {
	return r.accountWhere(ctx, sq.Expr("lower(email) = lower(?)", strings.TrimSpace(email)))
}

func (r *AccountRepository) AccountByUsername(ctx context.Context, username string) (*types.Account, error) {
	return r.accountWhere(ctx, sq.Expr("lower(username) = lower(?)", strings.TrimSpace(username)))
}

func (r *AccountRepository) AccountByVerificationToken(ctx context.Context, token uuid.UUID) (*types.Account, error) {
	return r.accountWhere(ctx, sq.Eq{"verification_token": token})
}

// Donor fetches a non-staff account.
func (r *AccountRepository) Donor(ctx context.Context, accountID string) (*types.Account, error) {
	return r.accountWhere(ctx, sq.Eq{"id": accountID, "is_staff": false})
}

func (r *AccountRepository) accountWhere(ctx context.Context, pred any) (*types.Account, error) {
	query, args, err := psql().
		Select(accountColumns...).
		From(accountTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account query: %w", err)
	}

	var account types.Account
	err = pgxscan.Get(ctx, r.db, &account, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &account, nil
}

// Donors lists every non-staff account, newest first.
func (r *AccountRepository) Donors(ctx context.Context) ([]*types.Account, error) {
	query, args, err := psql().
		Select(accountColumns...).
		From(accountTableName).
		Where(sq.Eq{"is_staff": false}).
		OrderBy("date_joined DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donors query: %w", err)
	}

	donors := make([]*types.Account, 0)
	err = pgxscan.Select(ctx, r.db, &donors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donors: %w", err)
	}

	return donors, nil
}

// CreateAccount inserts a new account after a case-insensitive duplicate
// check, both inside one transaction. Concurrent signups that slip past the
// check are caught by the unique indexes and reported the same way.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *types.Account) error {
	now := time.Now()
	if account.ID == "" {
		account.ID = utils.NanoID()
	}
	if account.VerificationToken == uuid.Nil {
		account.VerificationToken = uuid.New()
	}
	account.TokenCreatedAt = now
	account.DateJoined = now
	account.UpdatedAt = now

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		taken, err := exists(ctx, tx, accountTableName, sq.Expr("lower(username) = lower(?)", account.Username))
		if err != nil {
			return err
		}
		if taken {
			return types.ErrDuplicateUsername
		}

		taken, err = exists(ctx, tx, accountTableName, sq.Expr("lower(email) = lower(?)", account.Email))
		if err != nil {
			return err
		}
		if taken {
			return types.ErrDuplicateEmail
		}

		query, args, err := psql().
			Insert(accountTableName).
			SetMap(utils.StructToMap(account)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate create account query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		return err
	})

	return accountWriteError(err, "failed to create account")
}

// UpdateAccount persists identity, credential and active flag changes.
func (r *AccountRepository) UpdateAccount(ctx context.Context, account *types.Account) error {
	account.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(accountTableName).
		SetMap(map[string]any{
			"username":      account.Username,
			"email":         account.Email,
			"password_hash": account.PasswordHash,
			"is_active":     account.IsActive,
			"updated_at":    account.UpdatedAt,
		}).
		Where(sq.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update account query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return accountWriteError(err, "failed to update account")
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) MarkEmailVerified(ctx context.Context, accountID string) error {
	query, args, err := psql().
		Update(accountTableName).
		Set("email_verified", true).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate verify account query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAccountNotFound
	}

	return nil
}

// RotateVerificationToken issues a fresh token and restarts its validity window.
func (r *AccountRepository) RotateVerificationToken(ctx context.Context, accountID string) (uuid.UUID, time.Time, error) {
	token := uuid.New()
	now := time.Now()

	query, args, err := psql().
		Update(accountTableName).
		Set("verification_token", token).
		Set("token_created_at", now).
		Set("updated_at", now).
		Where(sq.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("failed to generate rotate token query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("failed to rotate verification token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uuid.Nil, time.Time{}, types.ErrAccountNotFound
	}

	return token, now, nil
}

// SetActive enables or disables a donor account.
func (r *AccountRepository) SetActive(ctx context.Context, accountID string, active bool) error {
	query, args, err := psql().
		Update(accountTableName).
		Set("is_active", active).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": accountID, "is_staff": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set active query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set donor active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAccountNotFound
	}

	return nil
}

// DeleteAccount removes a donor account; donations and items cascade.
func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	query, args, err := psql().
		Delete(accountTableName).
		Where(sq.Eq{"id": accountID, "is_staff": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete donor query for %s: %w", accountID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete donor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAccountNotFound
	}

	return nil
}

// UsernameTaken reports whether another account (not excludeID) already uses
// username, ignoring case.
func (r *AccountRepository) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	return exists(ctx, r.db, accountTableName, sq.And{
		sq.Expr("lower(username) = lower(?)", strings.TrimSpace(username)),
		sq.NotEq{"id": excludeID},
	})
}

func (r *AccountRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(ctx, r.db, accountTableName, sq.And{
		sq.Expr("lower(email) = lower(?)", strings.TrimSpace(email)),
		sq.NotEq{"id": excludeID},
	})
}

// DeleteStaleUnverified removes donor accounts that never verified and whose
// token was issued before cutoff.
func (r *AccountRepository) DeleteStaleUnverified(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := psql().
		Delete(accountTableName).
		Where(sq.Eq{"email_verified": false, "is_staff": false}).
		Where(sq.Lt{"token_created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate purge query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge unverified accounts: %w", err)
	}

	return tag.RowsAffected(), nil
}

func accountWriteError(err error, msg string) error {
	if err == nil {
		return nil
	}

	switch constraint, ok := uniqueViolation(err); {
	case ok && constraint == accountUsernameIndex:
		return types.ErrDuplicateUsername
	case ok && constraint == accountEmailIndex:
		return types.ErrDuplicateEmail
	case errors.Is(err, types.ErrDuplicateUsername), errors.Is(err, types.ErrDuplicateEmail):
		return err
	}

	return utils.ErrorWrapOrNil(err, msg)
}

func exists(ctx context.Context, q pgxscan.Querier, table string, pred any) (bool, error) {
	query, args, err := psql().
		Select("1").
		From(table).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate exists query on %s: %w", table, err)
	}

	var one int
	err = pgxscan.Get(ctx, q, &one, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}

	return true, nil
}
