package handler

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "sync"
    "time"

    "github.com/gots/membership/internal/model"
    "github.com/gots/membership/internal/queue"
    "github.com/gots/membership/internal/repository"
    "github.com/gots/membership/internal/utils"
)

// In-memory stand-ins for the repositories.  They mirror the MySQL
// semantics the handlers depend on: sql.ErrNoRows for absent rows,
// duplicate-key sentinels, and conditional rotation.

type fakeMembers struct {
    mu   sync.Mutex
    seq  uint64
    rows map[uint64]*model.Member
}

func newFakeMembers() *fakeMembers {
    return &fakeMembers{rows: make(map[uint64]*model.Member)}
}

func (f *fakeMembers) Create(_ context.Context, email, username, displayName, passwordHash string) (uint64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    email = strings.ToLower(strings.TrimSpace(email))
    username = strings.ToLower(strings.TrimSpace(username))
    for _, m := range f.rows {
        if m.Email == email {
            return 0, repository.ErrEmailExists
        }
        if m.Username == username {
            return 0, repository.ErrUsernameExists
        }
    }
    if displayName == "" {
        displayName = username
    }
    f.seq++
    now := time.Now().UTC()
    f.rows[f.seq] = &model.Member{
        ID: f.seq, Email: email, Username: username, DisplayName: displayName,
        PasswordHash: passwordHash, Role: "user", IsActive: true,
        CreatedAt: now, UpdatedAt: now,
    }
    return f.seq, nil
}

func (f *fakeMembers) GetByEmail(_ context.Context, email string) (model.Member, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    email = strings.ToLower(strings.TrimSpace(email))
    for _, m := range f.rows {
        if m.Email == email {
            return *m, nil
        }
    }
    return model.Member{}, sql.ErrNoRows
}

func (f *fakeMembers) GetByID(_ context.Context, id uint64) (model.Member, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if m, ok := f.rows[id]; ok {
        return *m, nil
    }
    return model.Member{}, sql.ErrNoRows
}

func (f *fakeMembers) ViewByID(ctx context.Context, id uint64) (model.MemberView, error) {
    m, err := f.GetByID(ctx, id)
    if err != nil {
        return model.MemberView{}, err
    }
    return m.View(), nil
}

func (f *fakeMembers) EmailExists(ctx context.Context, email string) (bool, error) {
    _, err := f.GetByEmail(ctx, email)
    if err == sql.ErrNoRows {
        return false, nil
    }
    return err == nil, err
}

func (f *fakeMembers) UsernameExists(_ context.Context, username string) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    username = strings.ToLower(strings.TrimSpace(username))
    for _, m := range f.rows {
        if m.Username == username {
            return true, nil
        }
    }
    return false, nil
}

func (f *fakeMembers) TouchLastAccessed(_ context.Context, id uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if m, ok := f.rows[id]; ok {
        m.LastAccessed = sql.NullTime{Time: time.Now().UTC(), Valid: true}
    }
    return nil
}

func (f *fakeMembers) UpdateProgress(_ context.Context, id uint64, characterID, sceneID string, progress uint8) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    m, ok := f.rows[id]
    if !ok {
        return sql.ErrNoRows
    }
    m.CurrentCharacterID = sql.NullString{String: characterID, Valid: characterID != ""}
    m.CurrentSceneID = sql.NullString{String: sceneID, Valid: sceneID != ""}
    m.ProgressPercentage = progress
    return nil
}

// mutate edits a stored row under the lock; tests use it to flip
// is_active and similar columns directly.
func (f *fakeMembers) mutate(id uint64, fn func(*model.Member)) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if m, ok := f.rows[id]; ok {
        fn(m)
    }
}

type fakeTokens struct {
    mu   sync.Mutex
    seq  uint64
    rows map[string]*model.RefreshToken // keyed by token hash
}

func newFakeTokens() *fakeTokens {
    return &fakeTokens{rows: make(map[string]*model.RefreshToken)}
}

func (f *fakeTokens) Store(_ context.Context, memberID uint64, tokenHash string, exp time.Time) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    // token_hash carries a unique index in the real table.
    if _, exists := f.rows[tokenHash]; exists {
        return errors.New("duplicate token hash")
    }
    f.seq++
    f.rows[tokenHash] = &model.RefreshToken{
        ID: f.seq, MemberID: memberID, TokenHash: tokenHash,
        ExpiresAt: exp, CreatedAt: time.Now().UTC(),
    }
    return nil
}

func (f *fakeTokens) Lookup(_ context.Context, tokenHash string) (model.RefreshToken, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if row, ok := f.rows[tokenHash]; ok {
        return *row, nil
    }
    return model.RefreshToken{}, sql.ErrNoRows
}

func (f *fakeTokens) Rotate(_ context.Context, oldHash, newHash string) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    row, ok := f.rows[oldHash]
    if !ok || row.Revoked || !row.ExpiresAt.After(time.Now().UTC()) {
        return false, nil
    }
    delete(f.rows, oldHash)
    row.TokenHash = newHash
    f.rows[newHash] = row
    return true, nil
}

func (f *fakeTokens) RevokeAllForMember(_ context.Context, memberID uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    for _, row := range f.rows {
        if row.MemberID == memberID {
            row.Revoked = true
        }
    }
    return nil
}

// mutate edits the row for a raw refresh token; tests use it to
// back-date expiry.
func (f *fakeTokens) mutate(rawToken string, fn func(*model.RefreshToken)) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if row, ok := f.rows[utils.HashRefreshRaw(rawToken)]; ok {
        fn(row)
    }
}

type fakeResets struct {
    mu      sync.Mutex
    seq     uint64
    rows    map[string]*model.PasswordResetToken
    members *fakeMembers
}

func newFakeResets(members *fakeMembers) *fakeResets {
    return &fakeResets{rows: make(map[string]*model.PasswordResetToken), members: members}
}

func (f *fakeResets) Create(_ context.Context, memberID uint64) (string, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    token, err := utils.NewResetToken()
    if err != nil {
        return "", err
    }
    f.seq++
    f.rows[token] = &model.PasswordResetToken{
        ID: f.seq, MemberID: memberID, Token: token,
        ExpiresAt: time.Now().UTC().Add(time.Hour),
        CreatedAt: time.Now().UTC(),
    }
    return token, nil
}

func (f *fakeResets) Validate(_ context.Context, token string) (uint64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    row, ok := f.rows[token]
    if !ok || row.UsedAt != nil || !row.ExpiresAt.After(time.Now().UTC()) {
        return 0, repository.ErrResetTokenInvalid
    }
    return row.MemberID, nil
}

func (f *fakeResets) Consume(_ context.Context, token, newPasswordHash string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    row, ok := f.rows[token]
    if !ok || row.UsedAt != nil || !row.ExpiresAt.After(time.Now().UTC()) {
        return repository.ErrResetTokenInvalid
    }
    now := time.Now().UTC()
    row.UsedAt = &now
    f.members.mutate(row.MemberID, func(m *model.Member) { m.PasswordHash = newPasswordHash })
    return nil
}

// mutate edits a stored reset row; tests use it to back-date expiry.
func (f *fakeResets) mutate(token string, fn func(*model.PasswordResetToken)) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if row, ok := f.rows[token]; ok {
        fn(row)
    }
}

// latestTokenFor returns the newest unconsumed reset token for a
// member; tests use it to follow the reset link without parsing mail.
func (f *fakeResets) latestTokenFor(memberID uint64) string {
    f.mu.Lock()
    defer f.mu.Unlock()
    var best *model.PasswordResetToken
    for _, row := range f.rows {
        if row.MemberID != memberID || row.UsedAt != nil {
            continue
        }
        if best == nil || row.ID > best.ID {
            best = row
        }
    }
    if best == nil {
        return ""
    }
    return best.Token
}

type auditEntry struct {
    memberID   *uint64
    successful bool
    ip, ua     string
}

type fakeAudit struct {
    mu      sync.Mutex
    entries []auditEntry
}

func (f *fakeAudit) Record(_ context.Context, memberID *uint64, successful bool, ip, userAgent string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    var idCopy *uint64
    if memberID != nil {
        v := *memberID
        idCopy = &v
    }
    f.entries = append(f.entries, auditEntry{memberID: idCopy, successful: successful, ip: ip, ua: userAgent})
    return nil
}

func (f *fakeAudit) last() (auditEntry, bool) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if len(f.entries) == 0 {
        return auditEntry{}, false
    }
    return f.entries[len(f.entries)-1], true
}

type fakeScenes struct {
    mu   sync.Mutex
    rows map[string]model.Scene
}

func newFakeScenes(scenes ...model.Scene) *fakeScenes {
    f := &fakeScenes{rows: make(map[string]model.Scene)}
    for _, s := range scenes {
        f.rows[s.ID] = s
    }
    return f
}

func (f *fakeScenes) ListByIDs(_ context.Context, ids []string) ([]model.Scene, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := []model.Scene{}
    for _, id := range ids {
        if s, ok := f.rows[id]; ok && s.Status == "published" {
            out = append(out, s)
        }
    }
    return out, nil
}

func (f *fakeScenes) GetByID(_ context.Context, id string) (model.Scene, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if s, ok := f.rows[id]; ok && s.Status == "published" {
        return s, nil
    }
    return model.Scene{}, sql.ErrNoRows
}

func (f *fakeScenes) Publish(_ context.Context, id string) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    s, ok := f.rows[id]
    if !ok || s.Status != "draft" {
        return false, nil
    }
    s.Status = "published"
    f.rows[id] = s
    return true, nil
}

type fakeMailer struct {
    mu     sync.Mutex
    events []queue.MailerEvent
    err    error
}

func (f *fakeMailer) publish(_ context.Context, ev queue.MailerEvent) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.err != nil {
        return f.err
    }
    f.events = append(f.events, ev)
    return nil
}

func (f *fakeMailer) all() []queue.MailerEvent {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := make([]queue.MailerEvent, len(f.events))
    copy(out, f.events)
    return out
}
