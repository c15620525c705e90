package handler

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gots/membership/internal/config"
    "github.com/gots/membership/internal/middleware"
    "github.com/gots/membership/internal/queue"
    "github.com/gots/membership/internal/repository"
    "github.com/gots/membership/internal/utils"
)

// RefreshTokenCookie is the name of the HTTP-only cookie carrying
// the refresh token.  The access cookie name lives in the middleware
// package because session resolution reads it.
const RefreshTokenCookie = "refreshToken"

// forgotPasswordMessage is the single response body for
// /auth/forgot-password.  It is identical whether or not the email
// matches a member and whether or not the mail event was published —
// the caller must not be able to probe for account existence.
const forgotPasswordMessage = "If an account exists with this email, you will receive password reset instructions."

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
    Cfg         config.Config
    Members     MemberStore
    Tokens      RefreshTokenStore
    Resets      ResetTokenStore
    Audit       LoginAudit
    PublishMail MailPublisher
}

func NewAuthHandler(cfg config.Config, members MemberStore, tokens RefreshTokenStore, resets ResetTokenStore, audit LoginAudit, publish MailPublisher) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Members: members, Tokens: tokens, Resets: resets, Audit: audit, PublishMail: publish}
}

// ----- DTOs -----

type registerReq struct {
    Email           string `json:"email"`
    Username        string `json:"username"`
    DisplayName     string `json:"displayName"`
    Password        string `json:"password"`
    ConfirmPassword string `json:"confirmPassword"`
}

type loginReq struct {
    Email      string `json:"email"`
    Password   string `json:"password"`
    RememberMe bool   `json:"rememberMe"`
}

type forgotPasswordReq struct {
    Email string `json:"email"`
}

type resetPasswordReq struct {
    Token           string `json:"token"`
    Password        string `json:"password"`
    ConfirmPassword string `json:"confirmPassword"`
}

// sessionResp is the success payload of register and login.
type sessionResp struct {
    ID                 uint64  `json:"id"`
    Email              string  `json:"email"`
    Username           string  `json:"username"`
    DisplayName        string  `json:"displayName"`
    AccessToken        string  `json:"accessToken"`
    RefreshToken       string  `json:"refreshToken"`
    ExpiresIn          int64   `json:"expiresIn"`
    CurrentCharacterID *string `json:"currentCharacterId,omitempty"`
    CurrentSceneID     *string `json:"currentSceneId,omitempty"`
}

func (h *AuthHandler) accessTTL() time.Duration {
    return time.Duration(h.Cfg.AccessTTLMin) * time.Minute
}

func (h *AuthHandler) refreshTTL(rememberMe bool) time.Duration {
    days := h.Cfg.RefreshTTLDays
    if rememberMe {
        days = h.Cfg.RememberMeTTLDays
    }
    return time.Duration(days) * 24 * time.Hour
}

// Register creates a member and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
    }
    if req.Password != req.ConfirmPassword {
        return failField(c, http.StatusBadRequest, "PASSWORD_MISMATCH", "Passwords do not match", "confirmPassword")
    }
    if errs := validateRegistration(req.Email, req.Username, req.Password); len(errs) > 0 {
        return failValidation(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if exists, err := h.Members.EmailExists(ctx, req.Email); err != nil {
        return h.infraError(c, "register: email check", err)
    } else if exists {
        return failField(c, http.StatusConflict, "EMAIL_EXISTS", "Email already in use", "email")
    }
    if exists, err := h.Members.UsernameExists(ctx, req.Username); err != nil {
        return h.infraError(c, "register: username check", err)
    } else if exists {
        return failField(c, http.StatusConflict, "USERNAME_EXISTS", "Username already taken", "username")
    }

    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return h.infraError(c, "register: hash password", err)
    }
    id, err := h.Members.Create(ctx, req.Email, req.Username, req.DisplayName, hash)
    if err != nil {
        // The existence pre-checks race with concurrent registrations;
        // the unique indexes have the final word.
        switch {
        case errors.Is(err, repository.ErrEmailExists):
            return failField(c, http.StatusConflict, "EMAIL_EXISTS", "Email already in use", "email")
        case errors.Is(err, repository.ErrUsernameExists):
            return failField(c, http.StatusConflict, "USERNAME_EXISTS", "Username already taken", "username")
        }
        return h.infraError(c, "register: create member", err)
    }

    m, err := h.Members.GetByID(ctx, id)
    if err != nil {
        return h.infraError(c, "register: load member", err)
    }
    pair, err := h.startSession(ctx, c, m.ID, m.Email, m.Username, m.Role, false)
    if err != nil {
        return h.infraError(c, "register: start session", err)
    }

    return ok(c, http.StatusCreated, sessionResp{
        ID:           m.ID,
        Email:        m.Email,
        Username:     m.Username,
        DisplayName:  m.DisplayName,
        AccessToken:  pair.AccessToken,
        RefreshToken: pair.RefreshToken,
        ExpiresIn:    pair.ExpiresIn,
    }, "Registration successful. Welcome to Guardians of the Spear!")
}

// Login verifies credentials and returns a fresh token pair.  Every
// attempt is recorded in the login history, including attempts
// against unknown emails.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
    }
    if strings.TrimSpace(req.Email) == "" || req.Password == "" {
        return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Email and password required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ip := c.RealIP()
    ua := c.Request().UserAgent()

    m, err := h.Members.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            h.recordAttempt(ctx, nil, false, ip, ua)
            return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
        }
        return h.infraError(c, "login: load member", err)
    }
    if !m.IsActive {
        return fail(c, http.StatusForbidden, "ACCOUNT_INACTIVE", "Account is inactive")
    }
    if !utils.VerifyPassword(m.PasswordHash, req.Password) {
        h.recordAttempt(ctx, &m.ID, false, ip, ua)
        return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
    }

    pair, err := h.startSession(ctx, c, m.ID, m.Email, m.Username, m.Role, req.RememberMe)
    if err != nil {
        return h.infraError(c, "login: start session", err)
    }
    h.recordAttempt(ctx, &m.ID, true, ip, ua)
    if err := h.Members.TouchLastAccessed(ctx, m.ID); err != nil {
        log.Printf("login: touch last_accessed for member %d: %v", m.ID, err)
    }

    view := m.View()
    return ok(c, http.StatusOK, sessionResp{
        ID:                 m.ID,
        Email:              m.Email,
        Username:           m.Username,
        DisplayName:        m.DisplayName,
        AccessToken:        pair.AccessToken,
        RefreshToken:       pair.RefreshToken,
        ExpiresIn:          pair.ExpiresIn,
        CurrentCharacterID: view.CurrentCharacterID,
        CurrentSceneID:     view.CurrentSceneID,
    }, "Login successful")
}

// Logout revokes every refresh token owned by the calling member —
// "log out everywhere", not per-device.  It succeeds and clears both
// cookies even when no member could be resolved, so it is idempotent
// and leaks nothing.
func (h *AuthHandler) Logout(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if raw := middleware.AccessTokenFrom(c); raw != "" {
        if claims, valid := utils.VerifyAccessToken(h.Cfg.JWTSecret, raw); valid {
            if err := h.Tokens.RevokeAllForMember(ctx, claims.MemberID); err != nil {
                log.Printf("logout: revoke tokens for member %d: %v", claims.MemberID, err)
            }
        }
    }
    h.clearAuthCookies(c)
    return ok(c, http.StatusOK, nil, "Logged out successfully")
}

// Me returns the resolved member view.  Session resolution and the
// 401 for unauthenticated callers are handled by the middleware
// chain.
func (h *AuthHandler) Me(c echo.Context) error {
    view, ok2 := middleware.CurrentMember(c)
    if !ok2 {
        return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
    }
    return ok(c, http.StatusOK, view, "")
}

// Refresh exchanges a valid refresh token for a new access token,
// rotating the stored refresh token in the same step.  Each
// rejection carries a distinct code so clients can tell "log in
// again" from a transient problem.
func (h *AuthHandler) Refresh(c echo.Context) error {
    ck, err := c.Cookie(RefreshTokenCookie)
    if err != nil || ck.Value == "" {
        return fail(c, http.StatusUnauthorized, "REFRESH_TOKEN_MISSING", "Refresh token not found")
    }
    raw := ck.Value

    // Cheap unverified expiry probe before signature verification.
    if utils.IsTokenExpired(raw) {
        return fail(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Refresh token expired")
    }
    claims, valid := utils.VerifyRefreshToken(h.Cfg.JWTRefreshSecret, raw)
    if !valid {
        return fail(c, http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "Invalid refresh token")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    oldHash := utils.HashRefreshRaw(raw)
    row, err := h.Tokens.Lookup(ctx, oldHash)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            // Never issued, or already rotated away.
            return fail(c, http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "Invalid refresh token")
        }
        return h.infraError(c, "refresh: lookup token", err)
    }
    if row.Revoked {
        return fail(c, http.StatusUnauthorized, "REFRESH_TOKEN_REVOKED", "Refresh token has been revoked")
    }
    if !row.ExpiresAt.After(time.Now().UTC()) {
        return fail(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Refresh token expired")
    }

    m, err := h.Members.GetByID(ctx, claims.MemberID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return fail(c, http.StatusUnauthorized, "MEMBER_INVALID", "Member not found or inactive")
        }
        return h.infraError(c, "refresh: load member", err)
    }
    if !m.IsActive {
        return fail(c, http.StatusUnauthorized, "MEMBER_INVALID", "Member not found or inactive")
    }

    pair, err := utils.IssueTokens(h.Cfg.JWTSecret, h.Cfg.JWTRefreshSecret,
        m.ID, m.Email, m.Username, m.Role, h.accessTTL(), h.refreshTTL(false))
    if err != nil {
        return h.infraError(c, "refresh: issue tokens", err)
    }
    rotated, err := h.Tokens.Rotate(ctx, oldHash, utils.HashRefreshRaw(pair.RefreshToken))
    if err != nil {
        return h.infraError(c, "refresh: rotate token", err)
    }
    if !rotated {
        // A concurrent refresh won the rotation; this token string no
        // longer matches any row.
        return fail(c, http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "Invalid refresh token")
    }

    h.setAuthCookies(c, pair, false)
    return ok(c, http.StatusOK, echo.Map{
        "accessToken": pair.AccessToken,
        "expiresIn":   pair.ExpiresIn,
    }, "Token refreshed successfully")
}

// ForgotPassword issues a reset token and queues the reset email.
// The response body is identical whether or not the email matches an
// active member, and a failed publish is logged but never surfaced —
// both are deliberate anti-enumeration measures.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
    var req forgotPasswordReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))
    if email == "" {
        return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email is required", "email")
    }
    if !utils.IsValidEmail(email) {
        return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid email format", "email")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    m, err := h.Members.GetByEmail(ctx, email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ok(c, http.StatusOK, nil, forgotPasswordMessage)
        }
        return h.infraError(c, "forgot-password: load member", err)
    }
    if !m.IsActive {
        return ok(c, http.StatusOK, nil, forgotPasswordMessage)
    }

    token, err := h.Resets.Create(ctx, m.ID)
    if err != nil {
        return h.infraError(c, "forgot-password: create reset token", err)
    }
    resetLink := strings.TrimSuffix(h.Cfg.SiteBaseURL, "/") + "/auth/reset-password?token=" + token

    if h.PublishMail != nil {
        ev := queue.MailerEvent{
            Kind:        queue.KindPasswordReset,
            Email:       m.Email,
            ResetLink:   resetLink,
            RequestedAt: time.Now().UTC().Format(time.RFC3339),
        }
        if err := h.PublishMail(ctx, ev); err != nil {
            // Swallowed on purpose: delivery failure must not be
            // observable by the caller.
            log.Printf("forgot-password: publish mail event: %v", err)
        }
    }
    return ok(c, http.StatusOK, nil, forgotPasswordMessage)
}

// ValidateResetToken is the reset form's pre-check: it reports
// whether the token in the emailed link is still good, without
// consuming it.
func (h *AuthHandler) ValidateResetToken(c echo.Context) error {
    token := c.QueryParam("token")
    if strings.TrimSpace(token) == "" {
        return fail(c, http.StatusBadRequest, "RESET_TOKEN_INVALID", "Invalid or expired reset link")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Resets.Validate(ctx, token); err != nil {
        if errors.Is(err, repository.ErrResetTokenInvalid) {
            return fail(c, http.StatusBadRequest, "RESET_TOKEN_INVALID", "Invalid or expired reset link. Please request a new one.")
        }
        return h.infraError(c, "reset-password: validate token", err)
    }
    return ok(c, http.StatusOK, echo.Map{"valid": true}, "")
}

// ResetPassword completes a reset: validates the inputs, then writes
// the new password hash and consumes the token as one atomic unit in
// the store.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
    var req resetPasswordReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
    }
    if strings.TrimSpace(req.Token) == "" {
        return fail(c, http.StatusBadRequest, "RESET_TOKEN_INVALID", "Invalid or expired reset link")
    }
    if req.Password == "" || req.ConfirmPassword == "" {
        return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Password and confirmation are required")
    }
    if req.Password != req.ConfirmPassword {
        return failField(c, http.StatusBadRequest, "PASSWORD_MISMATCH", "Passwords do not match", "confirmPassword")
    }
    if strength := utils.ValidatePasswordStrength(req.Password); !strength.IsStrong {
        return failValidation(c, http.StatusBadRequest, "VALIDATION_ERROR", strength.Errors)
    }

    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return h.infraError(c, "reset-password: hash password", err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Resets.Consume(ctx, req.Token, hash); err != nil {
        if errors.Is(err, repository.ErrResetTokenInvalid) {
            return fail(c, http.StatusBadRequest, "RESET_TOKEN_INVALID", "Invalid or expired reset link. Please request a new one.")
        }
        return h.infraError(c, "reset-password: consume token", err)
    }
    return ok(c, http.StatusOK, nil, "Password reset successfully. You can now log in with your new password.")
}

// ----- helpers -----

// startSession issues a token pair, stores the refresh hash and sets
// both cookies.  rememberMe stretches only the refresh lifetime; the
// access token is always 24h.
func (h *AuthHandler) startSession(ctx context.Context, c echo.Context, memberID uint64, email, username, role string, rememberMe bool) (utils.TokenPair, error) {
    refreshTTL := h.refreshTTL(rememberMe)
    pair, err := utils.IssueTokens(h.Cfg.JWTSecret, h.Cfg.JWTRefreshSecret,
        memberID, email, username, role, h.accessTTL(), refreshTTL)
    if err != nil {
        return utils.TokenPair{}, err
    }
    exp := time.Now().UTC().Add(refreshTTL)
    if err := h.Tokens.Store(ctx, memberID, utils.HashRefreshRaw(pair.RefreshToken), exp); err != nil {
        return utils.TokenPair{}, err
    }
    h.setAuthCookies(c, pair, rememberMe)
    return pair, nil
}

func (h *AuthHandler) setAuthCookies(c echo.Context, pair utils.TokenPair, rememberMe bool) {
    secure := h.Cfg.Env != "dev"
    c.SetCookie(&http.Cookie{
        Name:     middleware.AccessTokenCookie,
        Value:    pair.AccessToken,
        Path:     "/",
        MaxAge:   int(h.accessTTL() / time.Second),
        HttpOnly: true,
        Secure:   secure,
        SameSite: http.SameSiteStrictMode,
    })
    c.SetCookie(&http.Cookie{
        Name:     RefreshTokenCookie,
        Value:    pair.RefreshToken,
        Path:     "/",
        MaxAge:   int(h.refreshTTL(rememberMe) / time.Second),
        HttpOnly: true,
        Secure:   secure,
        SameSite: http.SameSiteStrictMode,
    })
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
    secure := h.Cfg.Env != "dev"
    for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
        c.SetCookie(&http.Cookie{
            Name:     name,
            Value:    "",
            Path:     "/",
            MaxAge:   -1,
            HttpOnly: true,
            Secure:   secure,
            SameSite: http.SameSiteStrictMode,
        })
    }
}

func (h *AuthHandler) recordAttempt(ctx context.Context, memberID *uint64, successful bool, ip, ua string) {
    if h.Audit == nil {
        return
    }
    if err := h.Audit.Record(ctx, memberID, successful, ip, ua); err != nil {
        log.Printf("login history: record attempt: %v", err)
    }
}

// infraError logs the raw failure server-side and answers with an
// actionable but sanitized operator-facing message.  Stack traces and
// raw SQL never reach the client.
func (h *AuthHandler) infraError(c echo.Context, op string, err error) error {
    log.Printf("%s: %v", op, err)
    return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", repository.InfraMessage(err))
}

// validateRegistration applies the form rules: plausible email,
// 3-20 character username limited to letters, digits and
// underscores, and the password strength policy.  It returns every
// violated rule; the first one becomes the user-facing message.
func validateRegistration(email, username, password string) []string {
    var errs []string
    if email == "" || !utils.IsValidEmail(email) {
        errs = append(errs, "Invalid email address")
    }
    if len(username) < 3 || len(username) > 20 {
        errs = append(errs, "Username must be 3-20 characters")
    } else if !isUsernameChars(username) {
        errs = append(errs, "Username can only contain letters, numbers, and underscores")
    }
    if strength := utils.ValidatePasswordStrength(password); !strength.IsStrong {
        errs = append(errs, strength.Errors...)
    }
    return errs
}

func isUsernameChars(s string) bool {
    for _, r := range s {
        switch {
        case r >= 'a' && r <= 'z':
        case r >= 'A' && r <= 'Z':
        case r >= '0' && r <= '9':
        case r == '_':
        default:
            return false
        }
    }
    return true
}
