package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/gots/membership/internal/model"
)

// memberColumns is the full column list scanned into model.Member.
const memberColumns = "id,email,username,display_name,password_hash,role,is_active," +
    "current_character_id,current_scene_id,progress_percentage,last_accessed,created_at,updated_at"

// MemberRepo provides access to the `members` table.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// Create inserts a member with an already-hashed password and returns
// its ID.  Email and username are normalized to lowercase so the
// unique indexes behave case-insensitively.  Duplicate-key races are
// mapped onto ErrEmailExists/ErrUsernameExists by index name.
func (r *MemberRepo) Create(ctx context.Context, email, username, displayName, passwordHash string) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    username = strings.ToLower(strings.TrimSpace(username))
    if displayName == "" {
        displayName = username
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO members (email, username, display_name, password_hash, role) VALUES (?,?,?,?, 'user')",
        email, username, displayName, passwordHash)
    if err != nil {
        switch {
        case isDuplicateEntry(err, "uq_members_email"):
            return 0, ErrEmailExists
        case isDuplicateEntry(err, "uq_members_username"):
            return 0, ErrUsernameExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail fetches a member by normalized email.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (model.Member, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return r.getWhere(ctx, "email=?", email)
}

// GetByID fetches a member by id.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (model.Member, error) {
    return r.getWhere(ctx, "id=?", id)
}

func (r *MemberRepo) getWhere(ctx context.Context, where string, arg any) (model.Member, error) {
    var m model.Member
    err := r.DB.QueryRowContext(ctx,
        "SELECT "+memberColumns+" FROM members WHERE "+where+" LIMIT 1", arg).
        Scan(&m.ID, &m.Email, &m.Username, &m.DisplayName, &m.PasswordHash, &m.Role, &m.IsActive,
            &m.CurrentCharacterID, &m.CurrentSceneID, &m.ProgressPercentage, &m.LastAccessed,
            &m.CreatedAt, &m.UpdatedAt)
    return m, err
}

// ViewByID loads the restricted client-facing projection.  The
// password hash never crosses this boundary.
func (r *MemberRepo) ViewByID(ctx context.Context, id uint64) (model.MemberView, error) {
    m, err := r.getWhere(ctx, "id=?", id)
    if err != nil {
        return model.MemberView{}, err
    }
    return m.View(), nil
}

// EmailExists reports whether a member with the normalized email exists.
func (r *MemberRepo) EmailExists(ctx context.Context, email string) (bool, error) {
    return r.exists(ctx, "email=?", strings.ToLower(strings.TrimSpace(email)))
}

// UsernameExists reports whether a member with the normalized username exists.
func (r *MemberRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
    return r.exists(ctx, "username=?", strings.ToLower(strings.TrimSpace(username)))
}

func (r *MemberRepo) exists(ctx context.Context, where string, arg any) (bool, error) {
    var one int
    err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM members WHERE "+where+" LIMIT 1", arg).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// TouchLastAccessed stamps the member's last successful login time.
func (r *MemberRepo) TouchLastAccessed(ctx context.Context, id uint64) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE members SET last_accessed=UTC_TIMESTAMP() WHERE id=?", id)
    return err
}

// UpdateProgress stores the member's current reading position.
// Empty strings clear the corresponding pointer.
func (r *MemberRepo) UpdateProgress(ctx context.Context, id uint64, characterID, sceneID string, progress uint8) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE members SET current_character_id=NULLIF(?,''), current_scene_id=NULLIF(?,''), progress_percentage=? WHERE id=?",
        characterID, sceneID, progress, id)
    return err
}
