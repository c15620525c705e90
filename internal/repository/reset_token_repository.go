package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/gots/membership/internal/utils"
)

// resetTokenTTL is the fixed validity window of a password reset
// token.  Expiry is checked at validation time; stale rows are never
// swept.
const resetTokenTTL = time.Hour

// ResetTokenRepo manages the single-use password reset tokens.
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Create issues a fresh random reset token for the member, persists
// it with a one-hour expiry and returns the raw token for embedding
// in the emailed link.
func (r *ResetTokenRepo) Create(ctx context.Context, memberID uint64) (string, error) {
    token, err := utils.NewResetToken()
    if err != nil {
        return "", err
    }
    exp := time.Now().UTC().Add(resetTokenTTL)
    _, err = r.DB.ExecContext(ctx,
        "INSERT INTO password_reset_tokens (member_id, token, expires_at) VALUES (?,?,?)",
        memberID, token, exp)
    if err != nil {
        return "", err
    }
    return token, nil
}

// Validate is the read-only check used before showing the reset
// form.  It returns the owning member id when the token exists, is
// unused and unexpired; ErrResetTokenInvalid otherwise.  The token is
// not consumed.
func (r *ResetTokenRepo) Validate(ctx context.Context, token string) (uint64, error) {
    var (
        memberID  uint64
        expiresAt time.Time
        usedAt    sql.NullTime
    )
    err := r.DB.QueryRowContext(ctx,
        "SELECT member_id, expires_at, used_at FROM password_reset_tokens WHERE token=? LIMIT 1",
        token).Scan(&memberID, &expiresAt, &usedAt)
    if err == sql.ErrNoRows {
        return 0, ErrResetTokenInvalid
    }
    if err != nil {
        return 0, err
    }
    if usedAt.Valid || !expiresAt.After(time.Now().UTC()) {
        return 0, ErrResetTokenInvalid
    }
    return memberID, nil
}

// Consume completes a password reset as one atomic unit: it
// re-validates the token under a row lock (time may have passed
// since the form was loaded), writes the new password hash and marks
// the token used.  Either both writes commit or neither does — a
// changed password with a still-live token, or the reverse, would be
// a correctness bug.
func (r *ResetTokenRepo) Consume(ctx context.Context, token, newPasswordHash string) error {
    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    var (
        memberID  uint64
        expiresAt time.Time
        usedAt    sql.NullTime
    )
    err = tx.QueryRowContext(ctx,
        "SELECT member_id, expires_at, used_at FROM password_reset_tokens WHERE token=? FOR UPDATE",
        token).Scan(&memberID, &expiresAt, &usedAt)
    if err == sql.ErrNoRows {
        return ErrResetTokenInvalid
    }
    if err != nil {
        return err
    }
    if usedAt.Valid || !expiresAt.After(time.Now().UTC()) {
        return ErrResetTokenInvalid
    }

    if _, err := tx.ExecContext(ctx,
        "UPDATE members SET password_hash=? WHERE id=?", newPasswordHash, memberID); err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx,
        "UPDATE password_reset_tokens SET used_at=UTC_TIMESTAMP() WHERE token=?", token); err != nil {
        return err
    }
    return tx.Commit()
}
