package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/db"
	"github.com/organivo/organivo/internal/auth"
	"github.com/organivo/organivo/internal/mailer"
	"github.com/organivo/organivo/internal/models"
	"github.com/organivo/organivo/internal/router"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestRouter wires the full router against a fresh in-memory database.
// Tests share the global db handle, so they must not run in parallel.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.TempEmail{},
		&models.Project{},
		&models.List{},
		&models.Task{},
	)
	require.NoError(t, err)

	db.DB = gdb

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	return router.New(router.Dependencies{
		Tokens: tokens,
		Hasher: auth.NewPasswordHasher("test-salt"),
		Mailer: mailer.LogMailer{},
	})
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope

	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}

	return w, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NotEmpty(t, env.Data)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// registerUser creates a verified-enough account and returns its session
// token and id.
func registerUser(t *testing.T, r *gin.Engine, email string) (string, uint) {
	t.Helper()

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"firstName": "ada",
		"lastName":  "lovelace",
		"email":     email,
		"password":  "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decodeData(t, env, &data)
	require.NotEmpty(t, data.Token)

	return data.Token, data.User.ID
}

type projectData struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func createProject(t *testing.T, r *gin.Engine, token, title string) uint {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, "/api/projects", token, gin.H{
		"title": title,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var data struct {
		Project projectData `json:"project"`
	}
	decodeData(t, env, &data)

	return data.Project.ID
}

type boardData struct {
	Project struct {
		ID     uint   `json:"id"`
		Title  string `json:"title"`
		Status string `json:"status"`
	} `json:"project"`
	Lists []struct {
		ID       uint   `json:"id"`
		Title    string `json:"title"`
		Position int    `json:"position"`
		Tasks    []struct {
			ID    uint   `json:"id"`
			Title string `json:"title"`
			Order int    `json:"order"`
		} `json:"tasks"`
	} `json:"lists"`
	Tasks []struct {
		ID     uint `json:"id"`
		ListID uint `json:"listId"`
		Order  int  `json:"order"`
	} `json:"tasks"`
}

func getBoard(t *testing.T, r *gin.Engine, token string, projectID uint) boardData {
	t.Helper()

	w, env := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/projects/%d/data", projectID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data boardData
	decodeData(t, env, &data)

	return data
}

func createTask(t *testing.T, r *gin.Engine, token string, projectID, listID uint, title string) uint {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/projects/%d/tasks", projectID), token, gin.H{
		"title":  title,
		"listId": listID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var data struct {
		Task struct {
			ID uint `json:"id"`
		} `json:"task"`
	}
	decodeData(t, env, &data)

	return data.Task.ID
}
