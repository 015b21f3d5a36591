package recipeservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/yyzahran/Recipe-App/internal/recipes/domain/models"
	repo "github.com/yyzahran/Recipe-App/internal/recipes/repository/reciperepo"
	"github.com/yyzahran/Recipe-App/pkg/logger"
)

var (
	ErrNotFound   = errors.New("recipe not found")
	ErrEmptyTitle = errors.New("recipe title is required")
	ErrBadPrice   = errors.New("price must be a non-negative decimal")
	ErrBadImage   = errors.New("image must be a jpeg or png file")
)

type Repository interface {
	CreateRecipe(context.Context, models.Recipe) (int64, error)
	UpdateRecipe(context.Context, models.Recipe, repo.UpdateRequest) error
	DeleteRecipe(ctx context.Context, userID, recipeID int64) error
	GetRecipe(ctx context.Context, userID, recipeID int64) (models.Recipe, error)
	ListRecipes(context.Context, repo.ListRequest) ([]models.Recipe, error)
	SetRecipeImage(ctx context.Context, userID, recipeID int64, image string) (string, error)
	ListTags(ctx context.Context, userID int64, assignedOnly bool) ([]models.Tag, error)
	UpdateTag(ctx context.Context, userID, tagID int64, name string) error
	DeleteTag(ctx context.Context, userID, tagID int64) error
	ListIngredients(ctx context.Context, userID int64, assignedOnly bool) ([]models.Ingredient, error)
	UpdateIngredient(ctx context.Context, userID, ingredientID int64, name string) error
	DeleteIngredient(ctx context.Context, userID, ingredientID int64) error
	Shutdown(context.Context) error
}

type Cache interface {
	GetRecipe(ctx context.Context, recipeID int64) (models.Recipe, error)
	SetRecipe(context.Context, models.Recipe) error
	DeleteRecipe(ctx context.Context, recipeID int64) error
}

type Media interface {
	SaveRecipeImage(data []byte, ext string) (string, error)
	Remove(key string) error
}

type RecipeService struct {
	recipeRepo  Repository
	recipeCache Cache
	media       Media
	lg          logger.Logger
}

func New(recipeRepo Repository, recipeCache Cache, media Media, lg logger.Logger) *RecipeService {
	return &RecipeService{
		recipeRepo:  recipeRepo,
		recipeCache: recipeCache,
		media:       media,
		lg:          lg,
	}
}

func (rs *RecipeService) CreateRecipe(ctx context.Context, userID int64, req CreateRecipeRequest) (models.Recipe, error) {
	if req.Title == "" {
		return models.Recipe{}, ErrEmptyTitle
	}

	price, err := normalizePrice(req.Price)
	if err != nil {
		return models.Recipe{}, err
	}

	r := models.Recipe{ //nolint:exhaustruct
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		TimeMinutes: req.TimeMinutes,
		Price:       price,
		Link:        req.Link,
		Tags:        toTags(req.Tags),
		Ingredients: toIngredients(req.Ingredients),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	id, err := rs.recipeRepo.CreateRecipe(ctx, r)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("create recipe error: %w", err)
	}

	created, err := rs.recipeRepo.GetRecipe(ctx, userID, id)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("get recipe error: %w", err)
	}

	if err := rs.recipeCache.SetRecipe(ctx, created); err != nil {
		rs.lg.Errorf("set recipe cache error: %s", err.Error())
	}

	return created, nil
}

func (rs *RecipeService) GetRecipe(ctx context.Context, userID, recipeID int64) (models.Recipe, error) {
	r, err := rs.recipeCache.GetRecipe(ctx, recipeID)
	if err == nil {
		// Cached entries are keyed by id alone, ownership still applies.
		if r.UserID != userID {
			return models.Recipe{}, ErrNotFound
		}

		return r, nil
	}

	r, err = rs.recipeRepo.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Recipe{}, ErrNotFound
		}

		return models.Recipe{}, fmt.Errorf("get recipe error: %w", err)
	}

	if err := rs.recipeCache.SetRecipe(ctx, r); err != nil {
		rs.lg.Errorf("set recipe cache error: %s", err.Error())
	}

	return r, nil
}

func (rs *RecipeService) ListRecipes(ctx context.Context, req ListRecipesRequest) ([]models.Recipe, error) {
	recipes, err := rs.recipeRepo.ListRecipes(ctx, repo.ListRequest{
		UserID:        req.UserID,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("list recipes error: %w", err)
	}

	return recipes, nil
}

func (rs *RecipeService) UpdateRecipe(ctx context.Context,
	userID, recipeID int64, req UpdateRecipeRequest,
) (models.Recipe, error) {
	r, err := rs.recipeRepo.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Recipe{}, ErrNotFound
		}

		return models.Recipe{}, fmt.Errorf("get recipe error: %w", err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return models.Recipe{}, ErrEmptyTitle
		}

		r.Title = *req.Title
	}

	if req.Description != nil {
		r.Description = *req.Description
	}

	if req.TimeMinutes != nil {
		r.TimeMinutes = *req.TimeMinutes
	}

	if req.Price != nil {
		price, err := normalizePrice(*req.Price)
		if err != nil {
			return models.Recipe{}, err
		}

		r.Price = price
	}

	if req.Link != nil {
		r.Link = *req.Link
	}

	var updateReq repo.UpdateRequest

	if req.Tags != nil {
		r.Tags = toTags(*req.Tags)
		updateReq.ReplaceTags = true
	}

	if req.Ingredients != nil {
		r.Ingredients = toIngredients(*req.Ingredients)
		updateReq.ReplaceIngredients = true
	}

	r.UpdatedAt = time.Now()

	if err := rs.recipeRepo.UpdateRecipe(ctx, r, updateReq); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Recipe{}, ErrNotFound
		}

		return models.Recipe{}, fmt.Errorf("update recipe error: %w", err)
	}

	if err := rs.recipeCache.DeleteRecipe(ctx, recipeID); err != nil {
		rs.lg.Errorf("delete recipe cache error: %s", err.Error())
	}

	updated, err := rs.recipeRepo.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("get recipe error: %w", err)
	}

	return updated, nil
}

func (rs *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID int64) error {
	r, err := rs.recipeRepo.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("get recipe error: %w", err)
	}

	if err := rs.recipeCache.DeleteRecipe(ctx, recipeID); err != nil {
		rs.lg.Errorf("delete recipe cache error: %s", err.Error())
	}

	if err := rs.recipeRepo.DeleteRecipe(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete recipe error: %w", err)
	}

	if r.Image != "" {
		if err := rs.media.Remove(r.Image); err != nil {
			rs.lg.Errorf("remove recipe image error: %s", err.Error())
		}
	}

	return nil
}

// UploadImage stores the file, points the recipe at it and drops the
// previous file, if any.
func (rs *RecipeService) UploadImage(ctx context.Context,
	userID, recipeID int64, data []byte, contentType string,
) (models.Recipe, error) {
	ext, err := imageExt(contentType)
	if err != nil {
		return models.Recipe{}, err
	}

	key, err := rs.media.SaveRecipeImage(data, ext)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("save image error: %w", err)
	}

	old, err := rs.recipeRepo.SetRecipeImage(ctx, userID, recipeID, key)
	if err != nil {
		if errR := rs.media.Remove(key); errR != nil {
			rs.lg.Errorf("remove orphan image error: %s", errR.Error())
		}

		if errors.Is(err, repo.ErrNotFound) {
			return models.Recipe{}, ErrNotFound
		}

		return models.Recipe{}, fmt.Errorf("set recipe image error: %w", err)
	}

	if old != "" && old != key {
		if err := rs.media.Remove(old); err != nil {
			rs.lg.Errorf("remove old image error: %s", err.Error())
		}
	}

	if err := rs.recipeCache.DeleteRecipe(ctx, recipeID); err != nil {
		rs.lg.Errorf("delete recipe cache error: %s", err.Error())
	}

	updated, err := rs.recipeRepo.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("get recipe error: %w", err)
	}

	return updated, nil
}

func (rs *RecipeService) GetTags(ctx context.Context, userID int64, assignedOnly bool) ([]models.Tag, error) {
	tags, err := rs.recipeRepo.ListTags(ctx, userID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("list tags error: %w", err)
	}

	return tags, nil
}

func (rs *RecipeService) UpdateTag(ctx context.Context, userID, tagID int64, name string) error {
	if err := rs.recipeRepo.UpdateTag(ctx, userID, tagID, name); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("update tag error: %w", err)
	}

	return nil
}

func (rs *RecipeService) DeleteTag(ctx context.Context, userID, tagID int64) error {
	if err := rs.recipeRepo.DeleteTag(ctx, userID, tagID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete tag error: %w", err)
	}

	return nil
}

func (rs *RecipeService) GetIngredients(ctx context.Context,
	userID int64, assignedOnly bool,
) ([]models.Ingredient, error) {
	ingredients, err := rs.recipeRepo.ListIngredients(ctx, userID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("list ingredients error: %w", err)
	}

	return ingredients, nil
}

func (rs *RecipeService) UpdateIngredient(ctx context.Context, userID, ingredientID int64, name string) error {
	if err := rs.recipeRepo.UpdateIngredient(ctx, userID, ingredientID, name); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("update ingredient error: %w", err)
	}

	return nil
}

func (rs *RecipeService) DeleteIngredient(ctx context.Context, userID, ingredientID int64) error {
	if err := rs.recipeRepo.DeleteIngredient(ctx, userID, ingredientID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete ingredient error: %w", err)
	}

	return nil
}

func (rs *RecipeService) Shutdown(ctx context.Context) error {
	if err := rs.recipeRepo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown recipe repo error: %w", err)
	}

	return nil
}

func normalizePrice(price string) (string, error) {
	if price == "" {
		return "0.00", nil
	}

	v, err := strconv.ParseFloat(price, 64)
	if err != nil || v < 0 {
		return "", ErrBadPrice
	}

	return price, nil
}

func imageExt(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	default:
		return "", ErrBadImage
	}
}

func toTags(names []string) []models.Tag {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, models.Tag{ID: 0, Name: name})
	}

	return tags
}

func toIngredients(names []string) []models.Ingredient {
	ingredients := make([]models.Ingredient, 0, len(names))
	for _, name := range names {
		ingredients = append(ingredients, models.Ingredient{ID: 0, Name: name})
	}

	return ingredients
}
