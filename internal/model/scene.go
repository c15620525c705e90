package model

import "time"

// Scene represents a narrative scene row in the `narrative_scenes`
// table.  Scene IDs are human-readable slugs ("scene_1_1") so they
// can be referenced from static character content.  Only scenes with
// status "published" are visible through the public API.
//
// Fields:
//  ID          – slug primary key, e.g. "scene_1_1".
//  Title       – display title of the scene.
//  PartNumber  – part of the serialized novel the scene belongs to.
//  SceneNumber – ordering within the part.
//  Status      – "draft" or "published".
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Scene struct {
    ID          string    `json:"id"`          // narrative_scenes.id
    Title       string    `json:"title"`       // narrative_scenes.title
    PartNumber  uint32    `json:"partNumber"`  // narrative_scenes.part_number
    SceneNumber uint32    `json:"sceneNumber"` // narrative_scenes.scene_number
    Status      string    `json:"status"`      // narrative_scenes.status
    CreatedAt   time.Time `json:"createdAt"`   // narrative_scenes.created_at
    UpdatedAt   time.Time `json:"updatedAt"`   // narrative_scenes.updated_at

    // Contents holds the published scene_contents rows attached to
    // the scene when the repository loads them; empty otherwise.
    Contents []SceneContent `json:"contents,omitempty"`
}

// SceneContent is one block of prose belonging to a scene.  A scene
// may carry several revisions; the public API only ever serves rows
// with status "published".
type SceneContent struct {
    ID        uint64    `json:"id"`        // scene_contents.id
    SceneID   string    `json:"sceneId"`   // scene_contents.scene_id
    Body      string    `json:"body"`      // scene_contents.body
    Status    string    `json:"status"`    // scene_contents.status
    CreatedAt time.Time `json:"createdAt"` // scene_contents.created_at
}
