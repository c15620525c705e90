package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"

    "github.com/gots/membership/internal/config"
    "github.com/gots/membership/internal/middleware"
    "github.com/gots/membership/internal/model"
)

// testEnv wires the handlers onto a real Echo instance with the same
// middleware chain the router mounts, backed by in-memory stores.
type testEnv struct {
    e       *echo.Echo
    cfg     config.Config
    members *fakeMembers
    tokens  *fakeTokens
    resets  *fakeResets
    audit   *fakeAudit
    scenes  *fakeScenes
    mailer  *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
    t.Helper()
    cfg := config.Config{
        Env:               "dev",
        JWTSecret:         "test-access-secret",
        JWTRefreshSecret:  "test-refresh-secret",
        AccessTTLMin:      24 * 60,
        RefreshTTLDays:    30,
        RememberMeTTLDays: 90,
        BcryptCost:        4, // MinCost+: keep the suite fast
        SiteBaseURL:       "https://gots.example.com",
    }

    env := &testEnv{
        cfg:     cfg,
        members: newFakeMembers(),
        tokens:  newFakeTokens(),
        audit:   &fakeAudit{},
        scenes: newFakeScenes(model.Scene{
            ID: "scene_1_1", Title: "The March to Golgotha",
            PartNumber: 1, SceneNumber: 1, Status: "published",
            Contents: []model.SceneContent{{ID: 1, SceneID: "scene_1_1", Body: "The sun had not yet cleared the eastern wall.", Status: "published"}},
        }),
        mailer: &fakeMailer{},
    }
    env.resets = newFakeResets(env.members)

    auth := NewAuthHandler(cfg, env.members, env.tokens, env.resets, env.audit, env.mailer.publish)
    content := NewContentHandler(env.scenes)
    progress := NewProgressHandler(env.members)
    optIn := NewOptInHandler(env.mailer.publish)
    health := NewHealthHandler(nil)

    resolve := middleware.ResolveMember(cfg.JWTSecret, env.members)

    e := echo.New()
    e.GET("/healthz", health.Health)

    g := e.Group("/auth")
    g.POST("/register", auth.Register)
    g.POST("/login", auth.Login)
    g.POST("/logout", auth.Logout)
    g.POST("/refresh", auth.Refresh)
    g.POST("/forgot-password", auth.ForgotPassword)
    g.POST("/reset-password", auth.ResetPassword)
    g.GET("/reset-password/validate", auth.ValidateResetToken)
    g.GET("/me", auth.Me, resolve, middleware.RequireMember())

    e.GET("/characters", content.ListCharacters)
    e.GET("/characters/:id", content.GetCharacter)
    e.GET("/locations", content.ListLocations)
    e.GET("/locations/:id", content.GetLocation)
    e.GET("/scenes", content.GetScenes)
    e.POST("/opt-in", optIn.OptIn)
    e.PUT("/progress", progress.Update, resolve, middleware.RequireMember())

    admin := e.Group("/admin", resolve, middleware.RequireMember(), middleware.RequireRole("admin"))
    admin.POST("/scenes/:id/publish", content.PublishScene)

    env.e = e
    return env
}

// do performs one request against the test server.  body may be a
// JSON string or empty; cookies are attached as-is.
func (env *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
    var req *http.Request
    if body != "" {
        req = httptest.NewRequest(method, path, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    } else {
        req = httptest.NewRequest(method, path, nil)
    }
    for _, ck := range cookies {
        req.AddCookie(ck)
    }
    rec := httptest.NewRecorder()
    env.e.ServeHTTP(rec, req)
    return rec
}

// doBearer performs a request authenticated by Authorization header
// instead of the cookie.
func (env *testEnv) doBearer(method, path, token string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, path, nil)
    req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
    rec := httptest.NewRecorder()
    env.e.ServeHTTP(rec, req)
    return rec
}

// envelope mirrors the response wrapper for assertions.
type envelope struct {
    Success bool           `json:"success"`
    Message string         `json:"message"`
    Data    map[string]any `json:"data"`
    Error   struct {
        Message string   `json:"message"`
        Code    string   `json:"code"`
        Field   string   `json:"field"`
        Details []string `json:"details"`
    } `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
    t.Helper()
    var env envelope
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
    return env
}

// cookieFrom pulls a named Set-Cookie from the response; nil when the
// response did not set it.
func cookieFrom(rec *httptest.ResponseRecorder, name string) *http.Cookie {
    res := rec.Result()
    for _, ck := range res.Cookies() {
        if ck.Name == name {
            return ck
        }
    }
    return nil
}

// register creates a member through the API and returns the
// response recorder; callers pull cookies off it.
func (env *testEnv) register(t *testing.T, email, username, password string) *httptest.ResponseRecorder {
    t.Helper()
    body := `{"email":"` + email + `","username":"` + username + `","displayName":"` + username +
        `","password":"` + password + `","confirmPassword":"` + password + `"}`
    rec := env.do(http.MethodPost, "/auth/register", body)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    return rec
}

// login authenticates through the API.
func (env *testEnv) login(t *testing.T, email, password string, rememberMe bool) *httptest.ResponseRecorder {
    t.Helper()
    remember := "false"
    if rememberMe {
        remember = "true"
    }
    return env.do(http.MethodPost, "/auth/login",
        `{"email":"`+email+`","password":"`+password+`","rememberMe":`+remember+`}`)
}
