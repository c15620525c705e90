package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a member.  The signed token string handed
// to the client is never stored; only its SHA-256 hash.  On rotation
// the hash column is overwritten in place, so a replayed old value
// simply has no matching row.  Revoked rows are kept as an audit
// trail.
//
// Fields:
//  ID        – primary key identifier.
//  MemberID  – owner of the token.
//  TokenHash – SHA-256 hex digest of the signed refresh token.
//  ExpiresAt – absolute expiry; not recomputed on rotation.
//  Revoked   – set once by logout or administrative action, never cleared.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64    // refresh_tokens.id
    MemberID  uint64    // refresh_tokens.member_id
    TokenHash string    // refresh_tokens.token_hash
    ExpiresAt time.Time // refresh_tokens.expires_at
    Revoked   bool      // refresh_tokens.revoked
    CreatedAt time.Time // refresh_tokens.created_at
}

// PasswordResetToken models a single-use reset capability in the
// `password_reset_tokens` table.  The token is a high-entropy random
// hex string, not a signed JWT.  A row is valid only while UsedAt is
// null and ExpiresAt is in the future; expiry is checked at
// validation time, never swept.
//
// Fields:
//  ID        – primary key identifier.
//  MemberID  – member the reset applies to.
//  Token     – 32 random bytes, hex encoded (64 chars), unique.
//  ExpiresAt – one hour after issuance.
//  UsedAt    – when the reset was completed (null while unused).
//  CreatedAt – timestamp of creation.
type PasswordResetToken struct {
    ID        uint64     // password_reset_tokens.id
    MemberID  uint64     // password_reset_tokens.member_id
    Token     string     // password_reset_tokens.token
    ExpiresAt time.Time  // password_reset_tokens.expires_at
    UsedAt    *time.Time // password_reset_tokens.used_at (nullable)
    CreatedAt time.Time  // password_reset_tokens.created_at
}
