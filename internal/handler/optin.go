package handler

import (
    "context"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gots/membership/internal/queue"
    "github.com/gots/membership/internal/utils"
)

// OptInHandler accepts newsletter sign-ups from the public site and
// hands them to the mailer queue.  No member account is required.
type OptInHandler struct {
    PublishMail MailPublisher
}

func NewOptInHandler(publish MailPublisher) *OptInHandler {
    return &OptInHandler{PublishMail: publish}
}

type optInReq struct {
    Email string `json:"email"`
}

// OptIn validates the address and enqueues the welcome event.  The
// queue is the system of record for the mailing list, so a publish
// failure here is a real error, unlike forgot-password.
func (h *OptInHandler) OptIn(c echo.Context) error {
    var req optInReq
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
    if h.PublishMail == nil {
        return fail(c, http.StatusServiceUnavailable, "INTERNAL_ERROR", "Sign-ups are temporarily unavailable")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ev := queue.MailerEvent{
        Kind:        queue.KindNewsletterOptIn,
        Email:       email,
        RequestedAt: time.Now().UTC().Format(time.RFC3339),
    }
    if err := h.PublishMail(ctx, ev); err != nil {
        log.Printf("opt-in: publish event: %v", err)
        return fail(c, http.StatusServiceUnavailable, "INTERNAL_ERROR", "Sign-ups are temporarily unavailable")
    }
    return ok(c, http.StatusOK, nil, "Thanks for signing up! Watch your inbox for new chapters.")
}
