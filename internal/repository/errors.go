// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as handlers to distinguish between different failure
// scenarios without inspecting SQL errors themselves.
package repository

import (
    "errors"
    "net"
    "strings"

    "github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when a member insert collides with the
// unique email index.  Handlers translate this into EMAIL_EXISTS/409.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when a member insert collides with
// the unique username index.  Handlers translate this into
// USERNAME_EXISTS/409.
var ErrUsernameExists = errors.New("username already exists")

// ErrResetTokenInvalid is returned when a password reset token is
// absent, already consumed or past its expiry.  All three cases look
// identical to the caller on purpose.
var ErrResetTokenInvalid = errors.New("reset token invalid or expired")

// MySQL server error numbers this layer cares about.
const (
    mysqlErrDuplicateEntry = 1062
    mysqlErrUnknownDB      = 1049
    mysqlErrNoSuchTable    = 1146
)

// InfraMessage classifies an unexpected database error into an
// actionable operator-facing message.  Classification prefers the
// structured driver error number; message substrings are only a
// last-resort fallback for errors that arrive wrapped or stringified.
// The returned message is safe to show: it names the operational
// problem, never raw SQL or stack detail.
func InfraMessage(err error) string {
    var my *mysql.MySQLError
    if errors.As(err, &my) {
        switch my.Number {
        case mysqlErrNoSuchTable, mysqlErrUnknownDB:
            return "Database setup incomplete. Run the migrations in migrations/schema.sql."
        case mysqlErrDuplicateEntry:
            return "Email or username already in use. Try logging in or use different credentials."
        }
    }
    var ne *net.OpError
    if errors.As(err, &ne) {
        return "Database connection failed. Check DB_HOST/DB_PORT and that MySQL is reachable."
    }
    s := strings.ToLower(err.Error())
    switch {
    case strings.Contains(s, "doesn't exist") || strings.Contains(s, "does not exist"):
        return "Database setup incomplete. Run the migrations in migrations/schema.sql."
    case strings.Contains(s, "connection refused") || strings.Contains(s, "i/o timeout") || strings.Contains(s, "bad connection"):
        return "Database connection failed. Check DB_HOST/DB_PORT and that MySQL is reachable."
    case strings.Contains(s, "too many connections"):
        return "Database connection limit reached. Lower the pool size or raise max_connections."
    }
    return "Something went wrong. Please try again."
}

// isDuplicateEntry reports whether err is a MySQL duplicate-key
// violation, optionally on the named index.
func isDuplicateEntry(err error, index string) bool {
    var my *mysql.MySQLError
    if !errors.As(err, &my) || my.Number != mysqlErrDuplicateEntry {
        return false
    }
    return index == "" || strings.Contains(my.Message, index)
}
