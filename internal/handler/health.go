package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// HealthHandler answers liveness probes.  With ?db=1 it also pings
// the database, turning the probe into a readiness check.
type HealthHandler struct {
    DB *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
    return &HealthHandler{DB: db}
}

func (h *HealthHandler) Health(c echo.Context) error {
    body := echo.Map{"status": "ok"}
    if c.QueryParam("db") == "1" {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if h.DB == nil {
            body["db"] = "unconfigured"
        } else if err := h.DB.PingContext(ctx); err != nil {
            body["status"] = "degraded"
            body["db"] = "unreachable"
            return c.JSON(http.StatusServiceUnavailable, body)
        } else {
            body["db"] = "ok"
        }
    }
    return c.JSON(http.StatusOK, body)
}
