package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yyzahran/Recipe-App/internal/pkg/config"
	"github.com/yyzahran/Recipe-App/internal/recipes/api/server"
	"github.com/yyzahran/Recipe-App/internal/recipes/app"
)

type RecipeSuite struct {
	suite.Suite
	app     app.RecipesApp
	cancel  context.CancelFunc
	baseURL string
}

var (
	defaultUserEmail    = "user@example.com"
	defaultUserPassword = "testpass1234"
)

func (rs *RecipeSuite) SetupSuite() {
	if testing.Short() {
		rs.T().Skip("integration test needs docker")
	}

	// Запуск из корня репозитория: миграции и compose-файлы ищутся там.
	if err := os.Chdir(".."); err != nil {
		rs.T().Fatalf("cannot chdir error: %v", err)
	}

	cmd := exec.Command("docker", "compose", "-f", "./test-compose.yaml", "up", "--build")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		rs.T().Fatalf("cannot start docker compose error: %v", err)
	}

	os.Setenv("DB_HOST", "127.0.0.1")
	os.Setenv("DB_NAME", "recipedb_test")
	os.Setenv("DB_USER", "recipeuser")
	os.Setenv("DB_PASS", "testpass")
	os.Setenv("SECRET", "test-secret")

	cfg, err := config.New("configs/config_test.yaml")
	if err != nil {
		rs.T().Fatalf("cannot get config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	a, err := app.New(ctx, cfg)
	if err != nil {
		cancel()
		rs.T().Fatalf("cannot get app error: %v", err)
	}

	rs.app = a
	rs.cancel = cancel
	rs.baseURL = "http://" + cfg.Server.Addr

	go a.Run(ctx)
	time.Sleep(time.Second * 2) // Время для запуска сервера и баз данных.
}

func (rs *RecipeSuite) TearDownSuite() {
	if rs.cancel != nil {
		rs.cancel()
	}

	cmd := exec.Command("docker", "compose", "-f", "./test-compose.yaml", "down", "-v")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		rs.T().Fatalf("cannot down docker containers error: %v", err)
	}
}

func (rs *RecipeSuite) TestHealthAfterStart() {
	resp, err := http.Get(rs.baseURL + "/api/health") //nolint:noctx
	rs.Require().NoError(err)

	defer resp.Body.Close()

	rs.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (rs *RecipeSuite) TestDocsAvailable() {
	resp, err := http.Get(rs.baseURL + "/api/docs") //nolint:noctx
	rs.Require().NoError(err)

	defer resp.Body.Close()

	rs.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (rs *RecipeSuite) TestUserFlow() {
	token := rs.registerUser(defaultUserEmail, defaultUserPassword, "John Doe")
	rs.Require().NotEmpty(token)

	// Повторная регистрация с тем же email отклоняется.
	resp := rs.postJSON("/api/user/create", "", map[string]string{
		"email":    defaultUserEmail,
		"password": defaultUserPassword,
		"name":     "John Doe",
	})
	resp.Body.Close()
	rs.Require().Equal(http.StatusBadRequest, resp.StatusCode)

	// Токен можно получить по логину и паролю.
	resp = rs.postJSON("/api/user/token", "", map[string]string{
		"email":    defaultUserEmail,
		"password": defaultUserPassword,
	})
	rs.Require().Equal(http.StatusOK, resp.StatusCode)

	var tr server.TokenResponse

	rs.decode(resp, &tr)
	rs.Require().NotEmpty(tr.Token)

	// /me возвращает нормализованный email.
	var u server.UserResponse

	resp = rs.getJSON("/api/user/me", tr.Token)
	rs.Require().Equal(http.StatusOK, resp.StatusCode)
	rs.decode(resp, &u)
	rs.Require().Equal(defaultUserEmail, u.Email)
}

func (rs *RecipeSuite) TestRecipeFlow() {
	token := rs.registerUser("cook@example.com", defaultUserPassword, "Cook")

	resp := rs.postJSON("/api/recipes", token, map[string]interface{}{
		"title":        "Sample recipe",
		"description":  "Sample description",
		"time_minutes": 30,
		"price":        "5.99",
		"tags":         []string{"Vegan", "Dessert"},
		"ingredients":  []string{"Salt"},
	})
	rs.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created server.RecipeDetailResponse

	rs.decode(resp, &created)
	rs.Require().Equal("Sample recipe", created.Title)
	rs.Require().Len(created.Tags, 2)
	rs.Require().Len(created.Ingredients, 1)

	// Список не содержит рецептов другого пользователя.
	otherToken := rs.registerUser("other@example.com", defaultUserPassword, "Other")

	var recipes []server.RecipeResponse

	resp = rs.getJSON("/api/recipes", otherToken)
	rs.Require().Equal(http.StatusOK, resp.StatusCode)
	rs.decode(resp, &recipes)
	rs.Require().Empty(recipes)

	resp = rs.getJSON("/api/recipes", token)
	rs.Require().Equal(http.StatusOK, resp.StatusCode)
	rs.decode(resp, &recipes)
	rs.Require().Len(recipes, 1)

	// Чужой рецепт недоступен по id.
	resp = rs.getJSON(fmt.Sprintf("/api/recipes/%d", created.ID), otherToken)
	resp.Body.Close()
	rs.Require().Equal(http.StatusNotFound, resp.StatusCode)

	// Замена набора тегов через PATCH.
	resp = rs.patchJSON(fmt.Sprintf("/api/recipes/%d", created.ID), token, map[string]interface{}{
		"tags": []string{"Vegan"},
	})
	rs.Require().Equal(http.StatusOK, resp.StatusCode)

	var updated server.RecipeDetailResponse

	rs.decode(resp, &updated)
	rs.Require().Len(updated.Tags, 1)
	rs.Require().Equal("Sample recipe", updated.Title)

	// Фильтрация по тегу.
	resp = rs.getJSON(fmt.Sprintf("/api/recipes?tags=%d", updated.Tags[0].ID), token)
	rs.Require().Equal(http.StatusOK, resp.StatusCode)
	rs.decode(resp, &recipes)
	rs.Require().Len(recipes, 1)

	// Теги доступны в каталоге.
	var tags []map[string]interface{}

	resp = rs.getJSON("/api/tags", token)
	rs.Require().Equal(http.StatusOK, resp.StatusCode)
	rs.decode(resp, &tags)
	rs.Require().Len(tags, 2)

	resp = rs.getJSON("/api/tags?assigned_only=1", token)
	rs.Require().Equal(http.StatusOK, resp.StatusCode)
	rs.decode(resp, &tags)
	rs.Require().Len(tags, 1)
}

func (rs *RecipeSuite) registerUser(email, password, name string) string {
	resp := rs.postJSON("/api/user/create", "", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	rs.Require().Equal(http.StatusCreated, resp.StatusCode)

	var tr server.TokenResponse

	rs.decode(resp, &tr)

	return tr.Token
}

func (rs *RecipeSuite) postJSON(path, token string, body interface{}) *http.Response {
	return rs.doJSON(http.MethodPost, path, token, body)
}

func (rs *RecipeSuite) patchJSON(path, token string, body interface{}) *http.Response {
	return rs.doJSON(http.MethodPatch, path, token, body)
}

func (rs *RecipeSuite) getJSON(path, token string) *http.Response {
	return rs.doJSON(http.MethodGet, path, token, nil)
}

func (rs *RecipeSuite) doJSON(method, path, token string, body interface{}) *http.Response {
	var buf bytes.Buffer

	if body != nil {
		rs.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequestWithContext(context.Background(), method, rs.baseURL+path, &buf)
	rs.Require().NoError(err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	rs.Require().NoError(err)

	return resp
}

func (rs *RecipeSuite) decode(resp *http.Response, v interface{}) {
	defer resp.Body.Close()

	rs.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

func TestRecipeSuite(t *testing.T) {
	suite.Run(t, new(RecipeSuite))
}
