package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"taste-trip/internal/api/handlers/health"
	"taste-trip/internal/core/auth"
	"taste-trip/internal/core/events"
	"taste-trip/internal/core/recipe"
	"taste-trip/internal/core/spoonacular"
	"taste-trip/internal/core/translation"
	"taste-trip/internal/core/user"
	"taste-trip/internal/infrastructure/config"
	"taste-trip/internal/infrastructure/database"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// dictProvider 依字典翻譯，韓文目標加上前綴
type dictProvider struct {
	dict map[string]string
}

func (p dictProvider) Translate(_ context.Context, text, lang string) (string, error) {
	if v, ok := p.dict[text]; ok {
		return v, nil
	}
	if lang == translation.LangKorean {
		return "ko:" + text, nil
	}
	return text, nil
}

type upstream struct {
	hits       atomic.Int32
	failFind   bool
	failSearch bool
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.hits.Add(1)
	switch {
	case r.URL.Path == "/recipes/findByIngredients":
		if u.failFind {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[
			{"id": 1, "title": "Pancake Stack",
			 "usedIngredients": [{"name": "egg"}, {"name": "milk"}],
			 "missedIngredients": [{"name": "flour"}, {"name": "sugar"}]},
			{"id": 2, "title": "Peanut Custard",
			 "usedIngredients": [{"name": "egg"}, {"name": "milk"}],
			 "missedIngredients": [{"name": "peanut"}]}
		]`))
	case r.URL.Path == "/recipes/complexSearch":
		if u.failSearch {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"results": [{"id": 9, "title": "Bibimbap"}]}`))
	case r.URL.Path == "/recipes/5/information":
		_, _ = w.Write([]byte(`{"id": 5, "title": "Kimchi Stew", "summary": "Spicy", "instructions": "Boil",
			"readyInMinutes": 30, "servings": 2,
			"extendedIngredients": [{"name": "kimchi", "original": "1 cup kimchi"}]}`))
	case r.URL.Path == "/food/ingredients/substitutes":
		_, _ = w.Write([]byte(`{"status": "success", "substitutes": ["1 cup margarine"]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type testEnv struct {
	router   *gin.Engine
	upstream *upstream
	verifier *auth.Verifier
}

func setupRouter(t *testing.T, up *upstream) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		App:         config.AppConfig{Version: "test"},
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second},
		Auth:        config.AuthConfig{JWTSecret: testSecret},
		DedupWindow: time.Millisecond,
	}

	api := spoonacular.NewClient(config.SpoonacularConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	cache := translation.NewMemoryCache(0)
	translator := translation.NewService(dictProvider{dict: map[string]string{"계란": "Egg", "우유": "Milk"}}, cache, 4)

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"}, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db, user.Models()...))

	hub := events.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	users := user.NewService(user.NewRepository(db), hub)
	recipes := recipe.NewService(api, translator, users, recipe.Options{
		MinIngredients: 2,
		FindNumber:     100,
		ComplexNumber:  5,
		FanoutLimit:    4,
		Engine:         recipe.DefaultEngine(),
	})
	verifier := auth.NewVerifier(cfg.Auth)

	router := SetupRouter(cfg, Dependencies{
		Recipes:    recipes,
		Users:      users,
		Hub:        hub,
		Verifier:   verifier,
		CacheStats: cache.GetStats,
	})
	return &testEnv{router: router, upstream: up, verifier: verifier}
}

func (e *testEnv) token(t *testing.T, subject string) string {
	tok, err := e.verifier.Issue(auth.Identity{Subject: subject, Email: subject + "@example.com"}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRecipesByPercent(t *testing.T) {
	env := setupRouter(t, &upstream{})

	w := env.do(http.MethodPost, "/get_recipes_by_percent/", map[string]interface{}{
		"ingredients": []string{"계란", "우유"},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := w.Body.String()
	assert.Less(t, strings.Index(body, `"100%"`), strings.Index(body, `"80%"`))
	assert.Less(t, strings.Index(body, `"50%"`), strings.Index(body, `"30%"`))

	out := decode(t, w)
	half := out["50%"].([]interface{})
	require.Len(t, half, 2)
	assert.Equal(t, "66%", half[0].(map[string]interface{})["match_percentage"])
	pancake := half[1].(map[string]interface{})
	assert.Equal(t, float64(1), pancake["id"])
	assert.Equal(t, "ko:Pancake Stack", pancake["title_kr"])
	assert.Equal(t, "50%", pancake["match_percentage"])
	assert.Equal(t, "https://spoonacular.com/recipes/Pancake-Stack-1", pancake["spoonacular_url"])

	assert.Len(t, out["80%"].([]interface{}), 0)
	assert.Len(t, out["30%"].([]interface{}), 0)
}

func TestRecipesByPercentValidation(t *testing.T) {
	env := setupRouter(t, &upstream{})

	w := env.do(http.MethodPost, "/get_recipes_by_percent/", map[string]interface{}{
		"ingredients": []string{"계란"},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, "INVALID_REQUEST", out["code"])
	assert.NotEmpty(t, out["error"])
	assert.Zero(t, env.upstream.hits.Load())

	w = env.do(http.MethodPost, "/get_recipes_by_percent/", "not an object", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipesByPercentUpstreamFailure(t *testing.T) {
	env := setupRouter(t, &upstream{failFind: true})

	w := env.do(http.MethodPost, "/get_recipes_by_percent/", map[string]interface{}{
		"ingredients": []string{"egg", "milk"},
	}, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "BAD_GATEWAY", decode(t, w)["code"])
}

func TestRecipesComplex(t *testing.T) {
	env := setupRouter(t, &upstream{})

	w := env.do(http.MethodPost, "/get_recipes/", map[string]interface{}{
		"ingredients": []string{"rice", "egg"},
		"cuisine":     "Korean",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var recipes []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipes))
	require.Len(t, recipes, 1)
	assert.Equal(t, "ko:Bibimbap", recipes[0]["title_kr"])
	assert.NotContains(t, recipes[0], "match_score")
}

func TestRecipesComplexFailureIsPayload(t *testing.T) {
	env := setupRouter(t, &upstream{failSearch: true})

	w := env.do(http.MethodPost, "/get_recipes/", map[string]interface{}{
		"ingredients": []string{"rice", "egg"},
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Failed to retrieve recipes", decode(t, w)["error"])
}

func TestRecipeDetail(t *testing.T) {
	env := setupRouter(t, &upstream{})

	w := env.do(http.MethodGet, "/get_recipe_detail/?id=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "ko:Kimchi Stew", out["title_kr"])
	assert.Equal(t, []interface{}{"ko:1 cup kimchi"}, out["ingredients"])
	assert.Equal(t, float64(30), out["readyInMinutes"])

	w = env.do(http.MethodGet, "/get_recipe_detail/?id=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/get_recipe_detail/?id=6", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])
}

func TestMultipleRecipeDetails(t *testing.T) {
	env := setupRouter(t, &upstream{})

	w := env.do(http.MethodPost, "/get_multiple_recipe_details/", []int{6, 5}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, float64(5), records[0]["id"])
}

func TestSubstitutes(t *testing.T) {
	env := setupRouter(t, &upstream{})

	w := env.do(http.MethodPost, "/get_substitutes/", map[string]interface{}{
		"ingredients": []string{"butter"},
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"ko:1 cup margarine"}, decode(t, w)["substitutes"])
}

func TestPreferencesRequireOwner(t *testing.T) {
	env := setupRouter(t, &upstream{})

	w := env.do(http.MethodGet, "/api/preferences/alice", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/preferences/alice", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/preferences/alice", nil, env.token(t, "bob"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPreferencesRoundTripAndFiltering(t *testing.T) {
	env := setupRouter(t, &upstream{})
	tok := env.token(t, "alice")

	w := env.do(http.MethodGet, "/api/preferences/alice", nil, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/api/preferences/alice", map[string]string{
		"diet":      "",
		"allergies": "peanut",
	}, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/preferences/alice", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "peanut", decode(t, w)["allergies"])

	w = env.do(http.MethodGet, "/api/user/alice", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.Equal(t, "alice@example.com", profile["user"].(map[string]interface{})["email"])

	// 帶權杖時套用偏好中的過敏原
	req := map[string]interface{}{"ingredients": []string{"egg", "milk"}}
	anon := decode(t, env.do(http.MethodPost, "/get_recipes_by_percent/", req, ""))
	assert.Len(t, anon["50%"].([]interface{}), 2)

	filtered := decode(t, env.do(http.MethodPost, "/get_recipes_by_percent/", req, tok))
	half := filtered["50%"].([]interface{})
	require.Len(t, half, 1)
	assert.Equal(t, float64(1), half[0].(map[string]interface{})["id"])
}

func TestFavorites(t *testing.T) {
	env := setupRouter(t, &upstream{})
	tok := env.token(t, "alice")

	w := env.do(http.MethodPost, "/api/favorites/alice", map[string]int{"recipe_id": 42}, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/favorites/alice", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	favs := decode(t, w)["favorites"].([]interface{})
	require.Len(t, favs, 1)
	assert.Equal(t, float64(42), favs[0].(map[string]interface{})["recipe_id"])

	w = env.do(http.MethodDelete, "/api/favorites/alice/42", nil, tok)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodDelete, "/api/favorites/alice/42", nil, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/api/favorites/alice", map[string]int{}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := setupRouter(t, &upstream{})

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		w := env.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.NotEmpty(t, env.do(http.MethodGet, "/health", nil, "").Header().Get("X-Request-ID"))
}

func TestHealthReportsTranslationCache(t *testing.T) {
	env := setupRouter(t, &upstream{})

	w := env.do(http.MethodPost, "/get_recipes_by_percent/", map[string]interface{}{
		"ingredients": []string{"계란", "우유"},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, env.do(http.MethodGet, "/health", nil, ""))
	stats, ok := out["translation_cache"].(map[string]interface{})
	require.True(t, ok, "health payload carries cache stats")
	assert.Greater(t, stats["size"].(float64), float64(0))
	assert.Contains(t, stats, "hit_ratio")
}

func TestReadinessReportsFailedChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{App: config.AppConfig{Version: "test"}}
	router := SetupRouter(cfg, Dependencies{
		Checks: map[string]health.Checker{
			"database": func(context.Context) error { return assert.AnError },
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database")
}

func TestEventsRequireTokenAndStayWithSubject(t *testing.T) {
	env := setupRouter(t, &upstream{})
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	connect := func(subject string) *websocket.Conn {
		header := http.Header{"Authorization": {"Bearer " + env.token(t, subject)}}
		conn, _, err := websocket.DefaultDialer.Dial(url, header)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}
	alice := connect("alice")
	bob := connect("bob")
	require.Eventually(t, func() bool {
		return decode(t, env.do(http.MethodGet, "/health", nil, ""))["event_clients"] == float64(2)
	}, time.Second, 10*time.Millisecond)

	w := env.do(http.MethodPost, "/api/preferences/alice", map[string]string{
		"allergies": "peanut,shellfish",
	}, env.token(t, "alice"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_ = alice.SetReadDeadline(time.Now().Add(time.Second))
	var msg struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, alice.ReadJSON(&msg))
	assert.Equal(t, events.TypePreferenceUpdated, msg.Type)
	assert.Equal(t, "peanut,shellfish", msg.Data["allergies"])

	_ = bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err, "other users must not receive preference events")
}
