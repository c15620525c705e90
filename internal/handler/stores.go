package handler

import (
    "context"
    "time"

    "github.com/gots/membership/internal/model"
    "github.com/gots/membership/internal/queue"
)

// The handlers depend on small store interfaces rather than concrete
// repositories.  The *sql.DB-backed repositories in
// internal/repository satisfy them; tests substitute in-memory
// fakes.  Injection happens at construction time — there is no
// module-level database handle anywhere.

// MemberStore persists member records.
type MemberStore interface {
    Create(ctx context.Context, email, username, displayName, passwordHash string) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.Member, error)
    GetByID(ctx context.Context, id uint64) (model.Member, error)
    ViewByID(ctx context.Context, id uint64) (model.MemberView, error)
    EmailExists(ctx context.Context, email string) (bool, error)
    UsernameExists(ctx context.Context, username string) (bool, error)
    TouchLastAccessed(ctx context.Context, id uint64) error
    UpdateProgress(ctx context.Context, id uint64, characterID, sceneID string, progress uint8) error
}

// RefreshTokenStore persists refresh-token hashes and is the single
// source of truth for their current validity.
type RefreshTokenStore interface {
    Store(ctx context.Context, memberID uint64, tokenHash string, exp time.Time) error
    Lookup(ctx context.Context, tokenHash string) (model.RefreshToken, error)
    Rotate(ctx context.Context, oldHash, newHash string) (bool, error)
    RevokeAllForMember(ctx context.Context, memberID uint64) error
}

// ResetTokenStore manages single-use password reset tokens.
type ResetTokenStore interface {
    Create(ctx context.Context, memberID uint64) (string, error)
    Validate(ctx context.Context, token string) (uint64, error)
    Consume(ctx context.Context, token, newPasswordHash string) error
}

// LoginAudit appends login-attempt rows.  Best-effort: callers log
// failures and move on.
type LoginAudit interface {
    Record(ctx context.Context, memberID *uint64, successful bool, ip, userAgent string) error
}

// SceneStore reads published narrative scenes.
type SceneStore interface {
    ListByIDs(ctx context.Context, ids []string) ([]model.Scene, error)
    GetByID(ctx context.Context, id string) (model.Scene, error)
    Publish(ctx context.Context, id string) (bool, error)
}

// MailPublisher drops a mailer event on the queue.  The
// queue_publisher package provides the production implementation.
type MailPublisher func(ctx context.Context, ev queue.MailerEvent) error
