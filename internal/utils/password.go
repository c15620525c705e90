package utils

import (
    "strings"

    "golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.  It
// returns false for a mismatch or a malformed hash, never an error.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// passwordSymbols is the punctuation set accepted by the strength
// policy.  The set is fixed; characters outside it do not count as
// symbols.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// StrengthResult reports the outcome of the password strength policy.
// Errors lists every violated rule in order so callers can show the
// first one to the user and the full list in form validation.
type StrengthResult struct {
    IsStrong bool
    Errors   []string
}

// ValidatePasswordStrength checks a password against the fixed policy:
// at least 8 characters, one uppercase letter, one lowercase letter,
// one digit and one symbol.  It is a pure function; hashing never
// rejects weak input, this does.
func ValidatePasswordStrength(password string) StrengthResult {
    var errs []string
    if len(password) < 8 {
        errs = append(errs, "Password must be at least 8 characters")
    }
    var upper, lower, digit, symbol bool
    for _, r := range password {
        switch {
        case r >= 'A' && r <= 'Z':
            upper = true
        case r >= 'a' && r <= 'z':
            lower = true
        case r >= '0' && r <= '9':
            digit = true
        case strings.ContainsRune(passwordSymbols, r):
            symbol = true
        }
    }
    if !upper {
        errs = append(errs, "Password must contain uppercase letter")
    }
    if !lower {
        errs = append(errs, "Password must contain lowercase letter")
    }
    if !digit {
        errs = append(errs, "Password must contain number")
    }
    if !symbol {
        errs = append(errs, "Password must contain special character")
    }
    return StrengthResult{IsStrong: len(errs) == 0, Errors: errs}
}

// IsValidEmail performs a minimal shape check: something before the
// @, a domain containing a dot, no whitespace anywhere.  Real
// validation happens by sending mail; this only rejects obvious
// garbage.
func IsValidEmail(email string) bool {
    if strings.ContainsAny(email, " \t\r\n") {
        return false
    }
    at := strings.Index(email, "@")
    if at <= 0 || at != strings.LastIndex(email, "@") {
        return false
    }
    domain := email[at+1:]
    dot := strings.Index(domain, ".")
    return dot > 0 && dot < len(domain)-1
}
