package server

import (
	"encoding/json"
	"net/http"

	"github.com/yyzahran/Recipe-App/internal/recipes/domain/models"
)

type TokenResponse struct {
	Token string `json:"token"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RecipeResponse is the list shape; the detail shape adds the description.
type RecipeResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	TimeMinutes int                 `json:"time_minutes"` //nolint:tagliatelle
	Price       string              `json:"price"`
	Link        string              `json:"link"`
	Image       string              `json:"image"`
	Tags        []models.Tag        `json:"tags"`
	Ingredients []models.Ingredient `json:"ingredients"`
}

type RecipeDetailResponse struct {
	RecipeResponse
	Description string `json:"description"`
}

func (s *Server) toRecipeResponse(r models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Image:       s.media.URL(r.Image),
		Tags:        r.Tags,
		Ingredients: r.Ingredients,
	}
}

func (s *Server) toRecipeDetailResponse(r models.Recipe) RecipeDetailResponse {
	return RecipeDetailResponse{
		RecipeResponse: s.toRecipeResponse(r),
		Description:    r.Description,
	}
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		w.Write(Error{Err: err.Error()}.ToJSON()) //nolint:errcheck
	}
}
