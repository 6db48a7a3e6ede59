package httpapi

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habithold/internal/config"
	"habithold/internal/docstore"
	"habithold/internal/pkg/lock"
	"habithold/internal/repository"
	"habithold/internal/service"
)

func newTestRouter() http.Handler {
	store := docstore.NewMemory()
	users := repository.NewUserRepository(store)
	kingdoms := repository.NewKingdomRepository(store)
	habits := repository.NewHabitRepository(store)
	rng := rand.New(rand.NewSource(1))
	weekly := config.WeeklyConfig{RolloverDay: time.Sunday, RolloverHour: 18}

	return NewRouter(config.ServerConfig{AllowedOrigins: []string{"*"}}, Services{
		Users:       service.NewUserService(users),
		Stats:       service.NewStatsService(users),
		Habits:      service.NewHabitService(users, habits),
		Kingdoms:    service.NewKingdomService(users, kingdoms, rng, 6, ""),
		Rollups:     service.NewRollupService(users, kingdoms, lock.NewKeyedLock(), weekly, rng),
		Rankings:    service.NewRankingService(users, kingdoms),
		Motivations: service.NewMotivationService(users, kingdoms, rng),
		Watchers:    service.NewWatcherService(users, kingdoms),
	})
}

func do(t *testing.T, router http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter()
	rec := do(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUser(t *testing.T) {
	router := newTestRouter()
	rec := do(t, router, http.MethodGet, "/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAndFetch(t *testing.T) {
	router := newTestRouter()

	rec := do(t, router, http.MethodPost, "/users", "u1", `{"displayName":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Registering again is idempotent.
	rec = do(t, router, http.MethodPost, "/users", "u1", `{"displayName":"Alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/me", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var user struct {
		DisplayName string `json:"displayName"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "Alice", user.DisplayName)
}

func TestHabitEndpoints(t *testing.T) {
	router := newTestRouter()
	require.Equal(t, http.StatusCreated,
		do(t, router, http.MethodPost, "/users", "u1", `{"displayName":"Alice"}`).Code)

	rec := do(t, router, http.MethodPost, "/me/habits", "u1",
		`{"name":"run","type":"good","frequency":7,"difficulty":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Validation errors map to 400.
	rec = do(t, router, http.MethodPost, "/me/habits", "u1",
		`{"name":"x","type":"good","frequency":0,"difficulty":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicates map to 409.
	rec = do(t, router, http.MethodPost, "/me/habits", "u1",
		`{"name":"run","type":"good","frequency":7,"difficulty":2}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/me/habits/run/mark", "u1", `{"delta":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var habit struct {
		Completed int `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &habit))
	assert.Equal(t, 1, habit.Completed)

	rec = do(t, router, http.MethodDelete, "/me/habits/run", "u1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodPost, "/me/habits/run/mark", "u1", `{"delta":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKingdomEndpoints(t *testing.T) {
	router := newTestRouter()
	require.Equal(t, http.StatusCreated,
		do(t, router, http.MethodPost, "/users", "u1", `{"displayName":"Alice"}`).Code)
	require.Equal(t, http.StatusCreated,
		do(t, router, http.MethodPost, "/users", "u2", `{"displayName":"Bob"}`).Code)

	rec := do(t, router, http.MethodPost, "/kingdoms", "u1", `{"name":"Camelot"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var kingdom struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kingdom))
	require.NotEmpty(t, kingdom.Code)

	rec = do(t, router, http.MethodPost, "/kingdoms/join", "u2", `{"code":"`+kingdom.Code+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/kingdom/progress", "u2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/kingdom/members/u1/motivate", "u2", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// Unknown users get 404, members without a kingdom get 409.
	rec = do(t, router, http.MethodGet, "/kingdom/progress", "ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusCreated,
		do(t, router, http.MethodPost, "/users", "u3", `{"displayName":"Cleo"}`).Code)
	rec = do(t, router, http.MethodGet, "/kingdom/progress", "u3", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
