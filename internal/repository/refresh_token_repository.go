package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/gots/membership/internal/model"
)

// RefreshTokenRepo persists and rotates refresh tokens.  Only the
// SHA-256 hash of the signed token is stored; every method is keyed
// on that hash.
type RefreshTokenRepo struct{ DB *sql.DB }

func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo { return &RefreshTokenRepo{DB: db} }

// Store inserts a refresh token hash row with its absolute expiry.
func (r *RefreshTokenRepo) Store(ctx context.Context, memberID uint64, tokenHash string, exp time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        "INSERT INTO refresh_tokens (member_id, token_hash, expires_at) VALUES (?,?,?)",
        memberID, tokenHash, exp)
    return err
}

// Lookup returns the stored row for a token hash.  sql.ErrNoRows
// means the token string was never issued or has been rotated away.
// The caller distinguishes revoked from expired from the row itself.
func (r *RefreshTokenRepo) Lookup(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
    var t model.RefreshToken
    err := r.DB.QueryRowContext(ctx,
        "SELECT id, member_id, token_hash, expires_at, revoked, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
        tokenHash).Scan(&t.ID, &t.MemberID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
    return t, err
}

// Rotate atomically replaces the stored hash with the new one,
// provided the row is still active.  Expiry is deliberately not
// recomputed: the session keeps its original absolute ceiling.  The
// conditional update makes rotation race-free — of two concurrent
// refreshes with the same token, exactly one sees rotated=true and
// the other must be rejected by the caller.
func (r *RefreshTokenRepo) Rotate(ctx context.Context, oldHash, newHash string) (bool, error) {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE refresh_tokens SET token_hash=? WHERE token_hash=? AND revoked=0 AND expires_at>UTC_TIMESTAMP()",
        newHash, oldHash)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

// RevokeAllForMember marks every active token owned by the member as
// revoked.  Rows stay in place as an audit trail.
func (r *RefreshTokenRepo) RevokeAllForMember(ctx context.Context, memberID uint64) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE refresh_tokens SET revoked=1 WHERE member_id=? AND revoked=0",
        memberID)
    return err
}
