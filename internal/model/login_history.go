package model

import (
    "database/sql"
    "time"
)

// LoginHistory is an append-only audit row recorded for every login
// attempt.  MemberID is null when the submitted email matched no
// account.  Application logic never reads these rows back; they
// exist for operators.
type LoginHistory struct {
    ID         uint64        // login_history.id
    MemberID   sql.NullInt64 // login_history.member_id (null for unknown email)
    Successful bool          // login_history.successful
    IPAddress  string        // login_history.ip_address
    UserAgent  string        // login_history.user_agent
    CreatedAt  time.Time     // login_history.created_at
}
