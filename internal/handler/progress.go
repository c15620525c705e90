package handler

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gots/membership/internal/middleware"
    "github.com/gots/membership/internal/repository"
)

// ProgressHandler persists a member's reading position.
type ProgressHandler struct {
    Members MemberStore
}

func NewProgressHandler(members MemberStore) *ProgressHandler {
    return &ProgressHandler{Members: members}
}

type progressReq struct {
    CurrentCharacterID string `json:"currentCharacterId"`
    CurrentSceneID     string `json:"currentSceneId"`
    ProgressPercentage *uint8 `json:"progressPercentage"`
}

// Update records where the member left off.  Character and scene ids
// are optional; the percentage is required and capped at 100.
func (h *ProgressHandler) Update(c echo.Context) error {
    view, found := middleware.CurrentMember(c)
    if !found {
        return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
    }

    var req progressReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
    }
    if req.ProgressPercentage == nil {
        return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "progressPercentage is required", "progressPercentage")
    }
    if *req.ProgressPercentage > 100 {
        return failField(c, http.StatusBadRequest, "VALIDATION_ERROR", "progressPercentage must be between 0 and 100", "progressPercentage")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Members.UpdateProgress(ctx, view.ID, req.CurrentCharacterID, req.CurrentSceneID, *req.ProgressPercentage); err != nil {
        log.Printf("progress: update for member %d: %v", view.ID, err)
        return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", repository.InfraMessage(err))
    }
    return ok(c, http.StatusOK, echo.Map{
        "currentCharacterId": req.CurrentCharacterID,
        "currentSceneId":     req.CurrentSceneID,
        "progressPercentage": *req.ProgressPercentage,
    }, "Progress saved")
}
