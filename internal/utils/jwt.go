package utils // package utils provides helpers for token creation, verification and hashing

import (
    "crypto/rand"   // secure random generation for reset tokens
    "crypto/sha256" // SHA-256 hashing for stored refresh tokens
    "encoding/hex"  // hex encoding for digests and random strings
    "time"          // expiry arithmetic

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// Issuer is the iss claim stamped on every token this service signs.
const Issuer = "gots.example.com"

// refreshTokenType is the value of the `type` claim on refresh
// tokens.  It exists so an access token can never be replayed as a
// refresh token even though both are HS256 JWTs.
const refreshTokenType = "refresh"

// TokenPair bundles a freshly issued access/refresh token pair.
// ExpiresIn is the access token lifetime in seconds, the value
// clients receive in responses.
type TokenPair struct {
    AccessToken  string
    RefreshToken string
    ExpiresIn    int64
}

// AccessClaims is the decoded, verified payload of an access token.
type AccessClaims struct {
    MemberID  uint64
    Email     string
    Username  string
    Role      string
    ExpiresAt time.Time
}

// RefreshClaims is the decoded, verified payload of a refresh token.
type RefreshClaims struct {
    MemberID  uint64
    ExpiresAt time.Time
}

// IssueTokens builds and signs an HS256 access/refresh pair for a
// member.  The two tokens are signed with distinct secrets so a
// leaked access-signing key cannot mint refresh tokens.  The access
// token carries subject, email, username and role; the refresh token
// carries only the subject plus the refresh type discriminator.
func IssueTokens(accessSecret, refreshSecret string, memberID uint64, email, username, role string, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
    now := time.Now().UTC()
    accessExp := now.Add(accessTTL)
    refreshExp := now.Add(refreshTTL)

    accessClaims := jwt.MapClaims{
        "sub":      memberID,
        "email":    email,
        "username": username,
        "role":     role,
        "iat":      now.Unix(),
        "exp":      accessExp.Unix(),
        "iss":      Issuer,
    }
    access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(accessSecret))
    if err != nil {
        return TokenPair{}, err
    }

    // jti makes every issued refresh token distinct even when two
    // issuances for the same member land in the same second; the
    // stored token_hash is unique per row and rotation must always
    // produce a new string.
    jti, err := newTokenID()
    if err != nil {
        return TokenPair{}, err
    }
    refreshClaims := jwt.MapClaims{
        "sub":  memberID,
        "iat":  now.Unix(),
        "exp":  refreshExp.Unix(),
        "iss":  Issuer,
        "type": refreshTokenType,
        "jti":  jti,
    }
    refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(refreshSecret))
    if err != nil {
        return TokenPair{}, err
    }

    return TokenPair{
        AccessToken:  access,
        RefreshToken: refresh,
        ExpiresIn:    int64(accessTTL / time.Second),
    }, nil
}

// VerifyAccessToken checks signature and expiry against the access
// secret.  It returns (nil, false) on any failure: malformed token,
// wrong signature, wrong algorithm, expired.  It never panics or
// propagates parse errors to the caller.
func VerifyAccessToken(secret, token string) (*AccessClaims, bool) {
    claims, ok := parseHS256(secret, token)
    if !ok {
        return nil, false
    }
    sub, ok := subjectID(claims)
    if !ok {
        return nil, false
    }
    exp, ok := expiryOf(claims)
    if !ok {
        return nil, false
    }
    ac := &AccessClaims{MemberID: sub, ExpiresAt: exp}
    ac.Email, _ = claims["email"].(string)
    ac.Username, _ = claims["username"].(string)
    ac.Role, _ = claims["role"].(string)
    return ac, true
}

// VerifyRefreshToken checks signature and expiry against the refresh
// secret and additionally requires the refresh type discriminator,
// so access tokens fail here even if both secrets were equal.
func VerifyRefreshToken(secret, token string) (*RefreshClaims, bool) {
    claims, ok := parseHS256(secret, token)
    if !ok {
        return nil, false
    }
    if typ, _ := claims["type"].(string); typ != refreshTokenType {
        return nil, false
    }
    sub, ok := subjectID(claims)
    if !ok {
        return nil, false
    }
    exp, ok := expiryOf(claims)
    if !ok {
        return nil, false
    }
    return &RefreshClaims{MemberID: sub, ExpiresAt: exp}, true
}

// IsTokenExpired decodes the token without verifying the signature
// and reports whether its exp claim has passed.  A token that cannot
// be decoded, or carries no exp, counts as expired.  This is only a
// cheap pre-check before a full signature verification.
func IsTokenExpired(token string) bool {
    var claims jwt.MapClaims
    if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
        return true
    }
    exp, ok := expiryOf(claims)
    if !ok {
        return true
    }
    return !exp.After(time.Now().UTC())
}

// HashRefreshRaw returns the SHA-256 hash of the signed refresh token
// as a hex string.  Only the hash is stored, so stolen database rows
// cannot be replayed as refresh tokens.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// newTokenID returns the random jti claim value for a refresh token.
func newTokenID() (string, error) {
    buf := make([]byte, 16)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}

// NewResetToken returns a 32-byte cryptographically random token,
// hex encoded.  Reset tokens are bearer capabilities, not JWTs: they
// carry no claims and are only as good as the row backing them.
func NewResetToken() (string, error) {
    buf := make([]byte, 32)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}

// parseHS256 parses and verifies an HS256 token, rejecting any other
// signing method.  Expiry is enforced by the jwt library during
// Parse.
func parseHS256(secret, token string) (jwt.MapClaims, bool) {
    tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, jwt.ErrSignatureInvalid
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, false
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, false
    }
    return claims, true
}

// subjectID extracts the numeric subject claim.  JWT numbers decode
// as float64; string subjects are not accepted because this service
// only ever issues numeric ids.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
    f, ok := claims["sub"].(float64)
    if !ok || f < 1 {
        return 0, false
    }
    return uint64(f), true
}

func expiryOf(claims jwt.MapClaims) (time.Time, bool) {
    f, ok := claims["exp"].(float64)
    if !ok {
        return time.Time{}, false
    }
    return time.Unix(int64(f), 0).UTC(), true
}
