package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tareas-api/internal/config"
	"tareas-api/internal/database"
	"tareas-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.RateLimit.Enabled = false
	cfg.Server.StaticDir = ""
	cfg.Auth.BCryptCost = 4

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return buildRouter(db, cfg, nil, nil, nil)
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *apiClient) register(email, password string) {
	w := c.do("POST", "/users/register", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
}

func (c *apiClient) login(email, password string) {
	form := url.Values{"username": {email}, "password": {password}}
	req, err := http.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(c.t, "bearer", resp.TokenType)
	c.token = resp.AccessToken
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	return task
}

func TestHealth(t *testing.T) {
	router := setupApp(t)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthReady(t *testing.T) {
	router := setupApp(t)

	req, _ := http.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "up", body["database"])
	assert.Equal(t, "disabled", body["cache"])
	assert.Equal(t, "disabled", body["notifications"])
}

func TestTaskRoutesRequireAuth(t *testing.T) {
	router := setupApp(t)
	anon := &apiClient{t: t, router: router}

	assert.Equal(t, http.StatusUnauthorized, anon.do("GET", "/tareas", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do("POST", "/tareas", map[string]string{"titulo": "x"}).Code)
}

// The full collaborative lifecycle: alice creates a task, assigns bob,
// bob can update but not delete or manage assignees, and alice finally
// deletes it.
func TestTaskLifecycle(t *testing.T) {
	router := setupApp(t)

	alice := &apiClient{t: t, router: router}
	bob := &apiClient{t: t, router: router}

	alice.register("alice@example.com", "password-a")
	bob.register("bob@example.com", "password-b")
	alice.login("alice@example.com", "password-a")
	bob.login("bob@example.com", "password-b")

	// Alice creates a task; she is creator and sole assignee.
	w := alice.do("POST", "/tareas", map[string]interface{}{
		"titulo":      "Buy milk",
		"descripcion": "two liters",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decodeTask(t, w)
	require.Len(t, task.Assignees, 1)
	assert.Equal(t, "alice@example.com", task.Assignees[0].Email)
	assert.Equal(t, task.Assignees[0].ID, task.CreatorID)
	assert.False(t, task.Completada)

	taskPath := fmt.Sprintf("/tareas/%d", task.ID)

	// Bob cannot see it yet.
	assert.Equal(t, http.StatusForbidden, bob.do("GET", taskPath, nil).Code)
	w = bob.do("GET", "/tareas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	// Alice assigns bob.
	w = alice.do("POST", taskPath+"/assign", map[string]string{"email": "bob@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	task = decodeTask(t, w)
	assert.Len(t, task.Assignees, 2)

	// Assigning bob again changes nothing.
	w = alice.do("POST", taskPath+"/assign", map[string]string{"email": "bob@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeTask(t, w).Assignees, 2)

	// Assigning an unregistered email fails.
	assert.Equal(t, http.StatusNotFound,
		alice.do("POST", taskPath+"/assign", map[string]string{"email": "ghost@example.com"}).Code)

	// Bob now sees the task and may update it.
	w = bob.do("GET", taskPath, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = bob.do("PUT", taskPath, map[string]interface{}{
		"titulo":      "Buy milk",
		"descripcion": "two liters",
		"completada":  true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeTask(t, w).Completada)

	// But bob is not the creator: no delete, no assignee management.
	assert.Equal(t, http.StatusForbidden, bob.do("DELETE", taskPath, nil).Code)
	assert.Equal(t, http.StatusForbidden,
		bob.do("POST", taskPath+"/assign", map[string]string{"email": "bob@example.com"}).Code)
	assert.Equal(t, http.StatusForbidden,
		bob.do("POST", taskPath+"/unassign", map[string]string{"email": "bob@example.com"}).Code)

	// The creator can never be unassigned.
	w = alice.do("POST", taskPath+"/unassign", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot_unassign_creator")

	// Alice removes bob; his list is empty again.
	w = alice.do("POST", taskPath+"/unassign", map[string]string{"email": "bob@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeTask(t, w).Assignees, 1)
	w = bob.do("GET", "/tareas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	// Alice deletes; the task is gone.
	assert.Equal(t, http.StatusNoContent, alice.do("DELETE", taskPath, nil).Code)
	assert.Equal(t, http.StatusNotFound, alice.do("GET", taskPath, nil).Code)
}

func TestListOrderingAndVisibility(t *testing.T) {
	router := setupApp(t)

	alice := &apiClient{t: t, router: router}
	bob := &apiClient{t: t, router: router}

	alice.register("alice@example.com", "password-a")
	bob.register("bob@example.com", "password-b")
	alice.login("alice@example.com", "password-a")
	bob.login("bob@example.com", "password-b")

	first := decodeTask(t, alice.do("POST", "/tareas", map[string]string{"titulo": "first"}))
	decodeTask(t, bob.do("POST", "/tareas", map[string]string{"titulo": "second"}))
	third := decodeTask(t, bob.do("POST", "/tareas", map[string]string{"titulo": "third"}))

	// Bob assigns alice to his later task only.
	w := bob.do("POST", fmt.Sprintf("/tareas/%d/assign", third.ID), map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	w = alice.do("GET", "/tareas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, third.ID, tasks[1].ID)
}

func TestRegisterConflictAndBadLogin(t *testing.T) {
	router := setupApp(t)
	c := &apiClient{t: t, router: router}

	c.register("alice@example.com", "password-a")

	w := c.do("POST", "/users/register", map[string]string{
		"email":    "alice@example.com",
		"password": "password-x",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	form := url.Values{"username": {"alice@example.com"}, "password": {"wrong"}}
	req, _ := http.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
