package handler

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gots/membership/internal/content"
    "github.com/gots/membership/internal/model"
)

// ContentHandler serves the story catalog: characters, locations and
// narrative scenes.  Characters and locations are compiled into the
// binary; scene prose comes from the scene store and only published
// material is ever returned.
type ContentHandler struct {
    Scenes SceneStore
}

func NewContentHandler(scenes SceneStore) *ContentHandler {
    return &ContentHandler{Scenes: scenes}
}

// ListCharacters returns the full character catalog.
func (h *ContentHandler) ListCharacters(c echo.Context) error {
    chars, err := content.AllCharacters()
    if err != nil {
        log.Printf("characters: load catalog: %v", err)
        return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Character catalog unavailable")
    }
    return ok(c, http.StatusOK, echo.Map{"characters": chars}, "")
}

// GetCharacter returns one character profile together with the
// published scenes the character appears in.
func (h *ContentHandler) GetCharacter(c echo.Context) error {
    id := c.Param("id")
    ch, found := content.CharacterByID(id)
    if !found {
        return fail(c, http.StatusNotFound, "NOT_FOUND", "Character not found")
    }

    scenes := []model.Scene{}
    if ids := content.SceneIDsForCharacter(ch.ID); len(ids) > 0 {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
        defer cancel()
        rows, err := h.Scenes.ListByIDs(ctx, ids)
        if err != nil {
            // The profile is still worth returning without its prose.
            log.Printf("characters: load scenes for %s: %v", ch.ID, err)
        } else {
            scenes = rows
        }
    }
    return ok(c, http.StatusOK, echo.Map{"character": ch, "scenes": scenes}, "")
}

// ListLocations returns the location gazetteer.
func (h *ContentHandler) ListLocations(c echo.Context) error {
    return ok(c, http.StatusOK, echo.Map{"locations": content.AllLocations()}, "")
}

// GetLocation returns one location.
func (h *ContentHandler) GetLocation(c echo.Context) error {
    loc, found := content.LocationByID(c.Param("id"))
    if !found {
        return fail(c, http.StatusNotFound, "NOT_FOUND", "Location not found")
    }
    return ok(c, http.StatusOK, echo.Map{"location": loc}, "")
}

// GetScenes answers /scenes with either ?sceneId= for a single scene
// with its full published prose, or ?characterId= for every published
// scene that character appears in.  Exactly one selector is required.
func (h *ContentHandler) GetScenes(c echo.Context) error {
    sceneID := c.QueryParam("sceneId")
    characterID := c.QueryParam("characterId")

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    switch {
    case sceneID != "" && characterID != "":
        return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Provide either sceneId or characterId, not both")
    case sceneID != "":
        scene, err := h.Scenes.GetByID(ctx, sceneID)
        if err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return fail(c, http.StatusNotFound, "NOT_FOUND", "Scene not found")
            }
            return h.infraError(c, "scenes: load scene", err)
        }
        return ok(c, http.StatusOK, echo.Map{"scene": scene}, "")
    case characterID != "":
        ch, found := content.CharacterByID(characterID)
        if !found {
            return fail(c, http.StatusNotFound, "NOT_FOUND", "Character not found")
        }
        // The lookup is case-insensitive; the scene map is keyed by
        // canonical id.
        ids := content.SceneIDsForCharacter(ch.ID)
        scenes := []model.Scene{}
        if len(ids) > 0 {
            rows, err := h.Scenes.ListByIDs(ctx, ids)
            if err != nil {
                return h.infraError(c, "scenes: list for character", err)
            }
            scenes = rows
        }
        return ok(c, http.StatusOK, echo.Map{"scenes": scenes}, "")
    default:
        return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "sceneId or characterId query parameter required")
    }
}

// PublishScene flips a draft scene to published.  The route is
// guarded by RequireRole("admin") upstream.
func (h *ContentHandler) PublishScene(c echo.Context) error {
    id := c.Param("id")
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    published, err := h.Scenes.Publish(ctx, id)
    if err != nil {
        return h.infraError(c, "scenes: publish", err)
    }
    if !published {
        return fail(c, http.StatusNotFound, "NOT_FOUND", "No draft scene with that id")
    }
    return ok(c, http.StatusOK, echo.Map{"id": id, "status": "published"}, "Scene published")
}

func (h *ContentHandler) infraError(c echo.Context, op string, err error) error {
    log.Printf("%s: %v", op, err)
    return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Story content is temporarily unavailable")
}
