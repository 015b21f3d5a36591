package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yyzahran/Recipe-App/internal/recipes/services/recipeservice"
)

// Получение всех рецептов пользователя с фильтрацией по тегам и ингредиентам
// (GET /api/recipes).
func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	req := recipeservice.ListRecipesRequest{
		UserID:        userIDFromContext(r.Context()),
		TagIDs:        nil,
		IngredientIDs: nil,
	}

	tagIDs, err := parseIDList(r.URL.Query().Get("tags"))
	if err != nil {
		handleError(w, fmt.Errorf("parse tags error: %w", err), http.StatusBadRequest)

		return
	}

	ingredientIDs, err := parseIDList(r.URL.Query().Get("ingredients"))
	if err != nil {
		handleError(w, fmt.Errorf("parse ingredients error: %w", err), http.StatusBadRequest)

		return
	}

	req.TagIDs = tagIDs
	req.IngredientIDs = ingredientIDs

	recipes, err := s.recipeService.ListRecipes(r.Context(), req)
	if err != nil {
		handleError(w, fmt.Errorf("list recipes error: %w", err), http.StatusInternalServerError)

		return
	}

	resp := make([]RecipeResponse, 0, len(recipes))
	for _, rec := range recipes {
		resp = append(resp, s.toRecipeResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Создание рецепта
// (POST /api/recipes).
func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeservice.CreateRecipeRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	recipe, err := s.recipeService.CreateRecipe(r.Context(), userIDFromContext(r.Context()), req)
	if err != nil {
		handleError(w, fmt.Errorf("create recipe error: %w", err), recipeErrStatus(err))

		return
	}

	writeJSON(w, http.StatusCreated, s.toRecipeDetailResponse(recipe))
}

// Получение рецепта
// (GET /api/recipes/{id}).
func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	recipe, err := s.recipeService.GetRecipe(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, recipeservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("get recipe error: %w", err), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, s.toRecipeDetailResponse(recipe))
}

// Обновление рецепта, частичное или полное
// (PATCH /api/recipes/{id}, PUT /api/recipes/{id}).
func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	var req recipeservice.UpdateRecipeRequest

	dec := json.NewDecoder(r.Body)

	if r.Method == http.MethodPut {
		// PUT заменяет все поля рецепта.
		var full recipeservice.CreateRecipeRequest

		if err := dec.Decode(&full); err != nil {
			handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

			return
		}

		if full.Tags == nil {
			full.Tags = []string{}
		}

		if full.Ingredients == nil {
			full.Ingredients = []string{}
		}

		req = recipeservice.UpdateRecipeRequest{
			Title:       &full.Title,
			Description: &full.Description,
			TimeMinutes: &full.TimeMinutes,
			Price:       &full.Price,
			Link:        &full.Link,
			Tags:        &full.Tags,
			Ingredients: &full.Ingredients,
		}
	} else {
		if err := dec.Decode(&req); err != nil {
			handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

			return
		}
	}

	recipe, err := s.recipeService.UpdateRecipe(r.Context(), userIDFromContext(r.Context()), id, req)
	if err != nil {
		if errors.Is(err, recipeservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("update recipe error: %w", err), recipeErrStatus(err))

		return
	}

	writeJSON(w, http.StatusOK, s.toRecipeDetailResponse(recipe))
}

// Удаление рецепта
// (DELETE /api/recipes/{id}).
func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	if err := s.recipeService.DeleteRecipe(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		if errors.Is(err, recipeservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("delete recipe error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Загрузка изображения рецепта
// (POST /api/recipes/{id}/image).
func (s *Server) uploadRecipeImage(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)

		return
	}

	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		handleError(w, fmt.Errorf("parse multipart error: %w", err), http.StatusBadRequest)

		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		handleError(w, fmt.Errorf("image file required: %w", err), http.StatusBadRequest)

		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload))
	if err != nil {
		handleError(w, fmt.Errorf("read image error: %w", err), http.StatusInternalServerError)

		return
	}

	// Тип определяется по содержимому, а не по заголовку формы.
	contentType := http.DetectContentType(data)

	recipe, err := s.recipeService.UploadImage(r.Context(), userIDFromContext(r.Context()), id, data, contentType)
	if err != nil {
		if errors.Is(err, recipeservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("upload image error: %w", err), recipeErrStatus(err))

		return
	}

	writeJSON(w, http.StatusOK, s.toRecipeDetailResponse(recipe))
}

func recipeID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id error: %w", err)
	}

	return id, nil
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))

	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse id %q error: %w", p, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func recipeErrStatus(err error) int {
	switch {
	case errors.Is(err, recipeservice.ErrEmptyTitle),
		errors.Is(err, recipeservice.ErrBadPrice),
		errors.Is(err, recipeservice.ErrBadImage):
		return http.StatusBadRequest
	case errors.Is(err, recipeservice.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
