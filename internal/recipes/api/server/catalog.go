package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yyzahran/Recipe-App/internal/recipes/services/recipeservice"
)

type renameRequest struct {
	Name string `json:"name"`
}

// Получение тегов пользователя
// (GET /api/tags).
func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.recipeService.GetTags(r.Context(), userIDFromContext(r.Context()), assignedOnly(r))
	if err != nil {
		handleError(w, fmt.Errorf("list tags error: %w", err), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, tags)
}

// Переименование тега
// (PATCH /api/tags/{id}).
func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	s.renameCatalogItem(w, r, s.recipeService.UpdateTag)
}

// Удаление тега
// (DELETE /api/tags/{id}).
func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	s.deleteCatalogItem(w, r, s.recipeService.DeleteTag)
}

// Получение ингредиентов пользователя
// (GET /api/ingredients).
func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := s.recipeService.GetIngredients(r.Context(), userIDFromContext(r.Context()), assignedOnly(r))
	if err != nil {
		handleError(w, fmt.Errorf("list ingredients error: %w", err), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, ingredients)
}

// Переименование ингредиента
// (PATCH /api/ingredients/{id}).
func (s *Server) updateIngredient(w http.ResponseWriter, r *http.Request) {
	s.renameCatalogItem(w, r, s.recipeService.UpdateIngredient)
}

// Удаление ингредиента
// (DELETE /api/ingredients/{id}).
func (s *Server) deleteIngredient(w http.ResponseWriter, r *http.Request) {
	s.deleteCatalogItem(w, r, s.recipeService.DeleteIngredient)
}

func (s *Server) renameCatalogItem(w http.ResponseWriter, r *http.Request,
	rename func(ctx context.Context, userID, id int64, name string) error,
) {
	id, err := recipeID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	var req renameRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if req.Name == "" {
		handleError(w, fmt.Errorf("name is required"), http.StatusBadRequest) //nolint:perfsprint

		return
	}

	if err := rename(r.Context(), userIDFromContext(r.Context()), id, req.Name); err != nil {
		if errors.Is(err, recipeservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("rename error: %w", err), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, renameRequest{Name: req.Name})
}

func (s *Server) deleteCatalogItem(w http.ResponseWriter, r *http.Request,
	del func(ctx context.Context, userID, id int64) error,
) {
	id, err := recipeID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	if err := del(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		if errors.Is(err, recipeservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("delete error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func assignedOnly(r *http.Request) bool {
	v := r.URL.Query().Get("assigned_only")

	return v == "1" || v == "true"
}
