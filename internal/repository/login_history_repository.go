package repository

import (
    "context"
    "database/sql"
)

// LoginHistoryRepo appends audit rows for login attempts.  Nothing
// in the application ever reads them back; they are for operators.
type LoginHistoryRepo struct{ DB *sql.DB }

func NewLoginHistoryRepo(db *sql.DB) *LoginHistoryRepo { return &LoginHistoryRepo{DB: db} }

// Record inserts one attempt.  memberID is nil when the submitted
// email matched no account.  Auditing is best-effort: callers log
// the returned error but never fail the request over it.
func (r *LoginHistoryRepo) Record(ctx context.Context, memberID *uint64, successful bool, ip, userAgent string) error {
    var mid sql.NullInt64
    if memberID != nil {
        mid = sql.NullInt64{Int64: int64(*memberID), Valid: true}
    }
    _, err := r.DB.ExecContext(ctx,
        "INSERT INTO login_history (member_id, successful, ip_address, user_agent) VALUES (?,?,?,?)",
        mid, successful, ip, userAgent)
    return err
}
