package model

import (
    "database/sql"
    "time"
)

// Member represents a registered reader as stored in the `members`
// table.  Email and username are normalized to lowercase before
// insert so the unique indexes behave case-insensitively.  The json
// tags are omitted because these structs are used internally by the
// repository layer; handlers expose MemberView instead.
//
// Fields:
//  ID                 – primary key identifier of the member.
//  Email              – unique email address, stored lowercase.
//  Username           – unique username, stored lowercase.
//  DisplayName        – name shown on the site.
//  PasswordHash       – bcrypt hashed password.
//  Role               – "user" or "admin".
//  IsActive           – whether the account is active; inactive members cannot log in or refresh.
//  CurrentCharacterID – reading position: character whose storyline the member follows (nullable).
//  CurrentSceneID     – reading position: last scene opened (nullable).
//  ProgressPercentage – rough completion percentage of the current storyline.
//  LastAccessed       – timestamp of the last successful login (nullable).
//  CreatedAt          – timestamp of creation.
//  UpdatedAt          – timestamp of last update.
type Member struct {
    ID                 uint64         // members.id
    Email              string         // members.email
    Username           string         // members.username
    DisplayName        string         // members.display_name
    PasswordHash       string         // members.password_hash
    Role               string         // members.role
    IsActive           bool           // members.is_active
    CurrentCharacterID sql.NullString // members.current_character_id (nullable)
    CurrentSceneID     sql.NullString // members.current_scene_id (nullable)
    ProgressPercentage uint8          // members.progress_percentage
    LastAccessed       sql.NullTime   // members.last_accessed (nullable)
    CreatedAt          time.Time      // members.created_at
    UpdatedAt          time.Time      // members.updated_at
}

// MemberView is the restricted projection of a member returned to
// clients.  It deliberately excludes the password hash and other
// internal columns; every "who is calling" decision works off this
// shape.
type MemberView struct {
    ID                 uint64  `json:"id"`
    Email              string  `json:"email"`
    Username           string  `json:"username"`
    DisplayName        string  `json:"displayName"`
    Role               string  `json:"role"`
    CurrentCharacterID *string `json:"currentCharacterId"`
    CurrentSceneID     *string `json:"currentSceneId"`
    ProgressPercentage uint8   `json:"progressPercentage"`
}

// View converts a full member row into its client-facing projection.
func (m Member) View() MemberView {
    v := MemberView{
        ID:                 m.ID,
        Email:              m.Email,
        Username:           m.Username,
        DisplayName:        m.DisplayName,
        Role:               m.Role,
        ProgressPercentage: m.ProgressPercentage,
    }
    if m.CurrentCharacterID.Valid {
        s := m.CurrentCharacterID.String
        v.CurrentCharacterID = &s
    }
    if m.CurrentSceneID.Valid {
        s := m.CurrentSceneID.String
        v.CurrentSceneID = &s
    }
    return v
}
