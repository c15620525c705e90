package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/gots/membership/internal/model"
)

// SceneRepo reads narrative scenes and their prose.  Public queries
// only ever see published rows; drafts stay invisible until an admin
// flips them.
type SceneRepo struct{ DB *sql.DB }

func NewSceneRepo(db *sql.DB) *SceneRepo { return &SceneRepo{DB: db} }

// ListByIDs returns the published scenes among ids, ordered by part
// then scene number, each carrying at most its first published
// content block (enough for a teaser list).
func (r *SceneRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Scene, error) {
    if len(ids) == 0 {
        return nil, nil
    }
    placeholders, args := inArgs(ids)
    rows, err := r.DB.QueryContext(ctx,
        "SELECT id, title, part_number, scene_number, status, created_at, updated_at "+
            "FROM narrative_scenes WHERE id IN ("+placeholders+") AND status='published' "+
            "ORDER BY part_number, scene_number", args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var scenes []model.Scene
    for rows.Next() {
        var s model.Scene
        if err := rows.Scan(&s.ID, &s.Title, &s.PartNumber, &s.SceneNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
            return nil, err
        }
        scenes = append(scenes, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(scenes) == 0 {
        return scenes, nil
    }

    // One pass over scene_contents for the whole batch; the ordering
    // guarantees the first row seen per scene is its oldest published
    // block.
    sceneIDs := make([]string, len(scenes))
    for i, s := range scenes {
        sceneIDs[i] = s.ID
    }
    placeholders, args = inArgs(sceneIDs)
    crows, err := r.DB.QueryContext(ctx,
        "SELECT id, scene_id, body, status, created_at FROM scene_contents "+
            "WHERE scene_id IN ("+placeholders+") AND status='published' "+
            "ORDER BY scene_id, id", args...)
    if err != nil {
        return nil, err
    }
    defer crows.Close()

    first := make(map[string]model.SceneContent, len(scenes))
    for crows.Next() {
        var c model.SceneContent
        if err := crows.Scan(&c.ID, &c.SceneID, &c.Body, &c.Status, &c.CreatedAt); err != nil {
            return nil, err
        }
        if _, seen := first[c.SceneID]; !seen {
            first[c.SceneID] = c
        }
    }
    if err := crows.Err(); err != nil {
        return nil, err
    }
    for i := range scenes {
        if c, ok := first[scenes[i].ID]; ok {
            scenes[i].Contents = []model.SceneContent{c}
        }
    }
    return scenes, nil
}

// inArgs builds the placeholder list and argument slice for an IN
// clause.
func inArgs(ids []string) (string, []any) {
    args := make([]any, len(ids))
    for i, id := range ids {
        args[i] = id
    }
    return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

// GetByID returns a single published scene with all of its published
// content blocks.  sql.ErrNoRows when absent or still a draft.
func (r *SceneRepo) GetByID(ctx context.Context, id string) (model.Scene, error) {
    var s model.Scene
    err := r.DB.QueryRowContext(ctx,
        "SELECT id, title, part_number, scene_number, status, created_at, updated_at "+
            "FROM narrative_scenes WHERE id=? AND status='published' LIMIT 1", id).
        Scan(&s.ID, &s.Title, &s.PartNumber, &s.SceneNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return model.Scene{}, err
    }
    rows, err := r.DB.QueryContext(ctx,
        "SELECT id, scene_id, body, status, created_at FROM scene_contents WHERE scene_id=? AND status='published' ORDER BY id",
        id)
    if err != nil {
        return model.Scene{}, err
    }
    defer rows.Close()
    for rows.Next() {
        var c model.SceneContent
        if err := rows.Scan(&c.ID, &c.SceneID, &c.Body, &c.Status, &c.CreatedAt); err != nil {
            return model.Scene{}, err
        }
        s.Contents = append(s.Contents, c)
    }
    return s, rows.Err()
}

// Publish flips a scene from draft to published.  Returns false when
// no draft row matched.
func (r *SceneRepo) Publish(ctx context.Context, id string) (bool, error) {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE narrative_scenes SET status='published' WHERE id=? AND status='draft'", id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}
