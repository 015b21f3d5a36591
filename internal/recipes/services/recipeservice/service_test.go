package recipeservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yyzahran/Recipe-App/internal/recipes/domain/models"
	repo "github.com/yyzahran/Recipe-App/internal/recipes/repository/reciperepo"
	"github.com/yyzahran/Recipe-App/internal/recipes/services/recipeservice"
	"github.com/yyzahran/Recipe-App/pkg/logger"
	"go.uber.org/zap"
)

type fakeRecipeRepo struct {
	recipes map[int64]models.Recipe
	nextID  int64
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: map[int64]models.Recipe{}, nextID: 0}
}

func (f *fakeRecipeRepo) CreateRecipe(_ context.Context, r models.Recipe) (int64, error) {
	f.nextID++
	r.ID = f.nextID
	f.recipes[r.ID] = r

	return r.ID, nil
}

func (f *fakeRecipeRepo) UpdateRecipe(_ context.Context, r models.Recipe, req repo.UpdateRequest) error {
	existing, ok := f.recipes[r.ID]
	if !ok || existing.UserID != r.UserID {
		return repo.ErrNotFound
	}

	if !req.ReplaceTags {
		r.Tags = existing.Tags
	}

	if !req.ReplaceIngredients {
		r.Ingredients = existing.Ingredients
	}

	r.Image = existing.Image
	f.recipes[r.ID] = r

	return nil
}

func (f *fakeRecipeRepo) DeleteRecipe(_ context.Context, userID, recipeID int64) error {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != userID {
		return repo.ErrNotFound
	}

	delete(f.recipes, recipeID)

	return nil
}

func (f *fakeRecipeRepo) GetRecipe(_ context.Context, userID, recipeID int64) (models.Recipe, error) {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != userID {
		return models.Recipe{}, repo.ErrNotFound
	}

	return r, nil
}

func (f *fakeRecipeRepo) ListRecipes(_ context.Context, req repo.ListRequest) ([]models.Recipe, error) {
	out := make([]models.Recipe, 0, len(f.recipes))

	for _, r := range f.recipes {
		if r.UserID == req.UserID {
			out = append(out, r)
		}
	}

	return out, nil
}

func (f *fakeRecipeRepo) SetRecipeImage(_ context.Context, userID, recipeID int64, image string) (string, error) {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != userID {
		return "", repo.ErrNotFound
	}

	old := r.Image
	r.Image = image
	f.recipes[recipeID] = r

	return old, nil
}

func (f *fakeRecipeRepo) ListTags(_ context.Context, _ int64, _ bool) ([]models.Tag, error) {
	return nil, nil
}

func (f *fakeRecipeRepo) UpdateTag(_ context.Context, _, _ int64, _ string) error { return nil }
func (f *fakeRecipeRepo) DeleteTag(_ context.Context, _, _ int64) error           { return nil }

func (f *fakeRecipeRepo) ListIngredients(_ context.Context, _ int64, _ bool) ([]models.Ingredient, error) {
	return nil, nil
}

func (f *fakeRecipeRepo) UpdateIngredient(_ context.Context, _, _ int64, _ string) error { return nil }
func (f *fakeRecipeRepo) DeleteIngredient(_ context.Context, _, _ int64) error           { return nil }
func (f *fakeRecipeRepo) Shutdown(_ context.Context) error                               { return nil }

type fakeCache struct {
	recipes map[int64]models.Recipe
}

func newFakeCache() *fakeCache {
	return &fakeCache{recipes: map[int64]models.Recipe{}}
}

func (f *fakeCache) GetRecipe(_ context.Context, recipeID int64) (models.Recipe, error) {
	r, ok := f.recipes[recipeID]
	if !ok {
		return models.Recipe{}, repo.ErrNotFound
	}

	return r, nil
}

func (f *fakeCache) SetRecipe(_ context.Context, r models.Recipe) error {
	f.recipes[r.ID] = r

	return nil
}

func (f *fakeCache) DeleteRecipe(_ context.Context, recipeID int64) error {
	delete(f.recipes, recipeID)

	return nil
}

type fakeMedia struct {
	saved   []string
	removed []string
}

func (f *fakeMedia) SaveRecipeImage(_ []byte, ext string) (string, error) {
	key := "uploads/recipe/fake" + ext
	f.saved = append(f.saved, key)

	return key, nil
}

func (f *fakeMedia) Remove(key string) error {
	f.removed = append(f.removed, key)

	return nil
}

func newService(rr *fakeRecipeRepo, rc *fakeCache, media *fakeMedia) *recipeservice.RecipeService {
	return recipeservice.New(rr, rc, media, logger.ZapLogger{SugaredLogger: zap.NewNop().Sugar()})
}

func TestCreateRecipe(t *testing.T) {
	rr := newFakeRecipeRepo()
	rc := newFakeCache()
	rs := newService(rr, rc, &fakeMedia{})

	recipe, err := rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{
		Title:       "Sample recipe",
		Description: "Sample description",
		TimeMinutes: 30,
		Price:       "5.99",
		Link:        "https://www.example.com/recipe.pdf",
		Tags:        []string{"Vegan"},
		Ingredients: []string{"Salt"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), recipe.ID)
	require.Equal(t, int64(1), recipe.UserID)
	require.False(t, recipe.CreatedAt.IsZero())

	// Создание прогревает кэш.
	cached, err := rc.GetRecipe(context.Background(), recipe.ID)
	require.NoError(t, err)
	require.Equal(t, "Sample recipe", cached.Title)
}

func TestCreateRecipeEmptyTitle(t *testing.T) {
	rs := newService(newFakeRecipeRepo(), newFakeCache(), &fakeMedia{})

	_, err := rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{}) //nolint:exhaustruct
	require.ErrorIs(t, err, recipeservice.ErrEmptyTitle)
}

func TestCreateRecipeBadPrice(t *testing.T) {
	rs := newService(newFakeRecipeRepo(), newFakeCache(), &fakeMedia{})

	_, err := rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{ //nolint:exhaustruct
		Title: "Sample",
		Price: "not a number",
	})
	require.ErrorIs(t, err, recipeservice.ErrBadPrice)

	_, err = rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{ //nolint:exhaustruct
		Title: "Sample",
		Price: "-1",
	})
	require.ErrorIs(t, err, recipeservice.ErrBadPrice)
}

func TestGetRecipeCacheOwnership(t *testing.T) {
	rr := newFakeRecipeRepo()
	rc := newFakeCache()
	rs := newService(rr, rc, &fakeMedia{})

	created, err := rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{ //nolint:exhaustruct
		Title: "Mine",
	})
	require.NoError(t, err)

	// Чужой пользователь не получает рецепт даже из кэша.
	_, err = rs.GetRecipe(context.Background(), 2, created.ID)
	require.ErrorIs(t, err, recipeservice.ErrNotFound)

	got, err := rs.GetRecipe(context.Background(), 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Mine", got.Title)
}

func TestGetRecipeCacheMissFallsThrough(t *testing.T) {
	rr := newFakeRecipeRepo()
	rc := newFakeCache()
	rs := newService(rr, rc, &fakeMedia{})

	created, err := rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{ //nolint:exhaustruct
		Title: "Mine",
	})
	require.NoError(t, err)

	require.NoError(t, rc.DeleteRecipe(context.Background(), created.ID))

	got, err := rs.GetRecipe(context.Background(), 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Mine", got.Title)

	// Промах заполняет кэш обратно.
	_, err = rc.GetRecipe(context.Background(), created.ID)
	require.NoError(t, err)
}

func TestUpdateRecipePartial(t *testing.T) {
	rr := newFakeRecipeRepo()
	rc := newFakeCache()
	rs := newService(rr, rc, &fakeMedia{})

	created, err := rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{ //nolint:exhaustruct
		Title:       "Old title",
		TimeMinutes: 10,
		Tags:        []string{"Vegan"},
	})
	require.NoError(t, err)

	newTitle := "New title"

	updated, err := rs.UpdateRecipe(context.Background(), 1, created.ID, recipeservice.UpdateRecipeRequest{ //nolint:exhaustruct
		Title: &newTitle,
	})
	require.NoError(t, err)
	require.Equal(t, "New title", updated.Title)
	require.Equal(t, 10, updated.TimeMinutes)
	// Теги не заменяются, если поле не передано.
	require.Equal(t, created.Tags, updated.Tags)
}

func TestUpdateRecipeReplaceTags(t *testing.T) {
	rr := newFakeRecipeRepo()
	rs := newService(rr, newFakeCache(), &fakeMedia{})

	created, err := rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{ //nolint:exhaustruct
		Title: "Sample",
		Tags:  []string{"Vegan"},
	})
	require.NoError(t, err)

	empty := []string{}

	updated, err := rs.UpdateRecipe(context.Background(), 1, created.ID, recipeservice.UpdateRecipeRequest{ //nolint:exhaustruct
		Tags: &empty,
	})
	require.NoError(t, err)
	require.Empty(t, updated.Tags)
}

func TestUpdateRecipeNotFound(t *testing.T) {
	rs := newService(newFakeRecipeRepo(), newFakeCache(), &fakeMedia{})

	newTitle := "whatever"

	_, err := rs.UpdateRecipe(context.Background(), 1, 99, recipeservice.UpdateRecipeRequest{ //nolint:exhaustruct
		Title: &newTitle,
	})
	require.ErrorIs(t, err, recipeservice.ErrNotFound)
}

func TestDeleteRecipeRemovesImage(t *testing.T) {
	rr := newFakeRecipeRepo()
	rc := newFakeCache()
	media := &fakeMedia{}
	rs := newService(rr, rc, media)

	created, err := rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{ //nolint:exhaustruct
		Title: "Sample",
	})
	require.NoError(t, err)

	_, err = rs.UploadImage(context.Background(), 1, created.ID, []byte("img"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, rs.DeleteRecipe(context.Background(), 1, created.ID))
	require.Contains(t, media.removed, "uploads/recipe/fake.jpg")

	_, err = rs.GetRecipe(context.Background(), 1, created.ID)
	require.ErrorIs(t, err, recipeservice.ErrNotFound)
}

func TestUploadImage(t *testing.T) {
	rr := newFakeRecipeRepo()
	rc := newFakeCache()
	media := &fakeMedia{}
	rs := newService(rr, rc, media)

	created, err := rs.CreateRecipe(context.Background(), 1, recipeservice.CreateRecipeRequest{ //nolint:exhaustruct
		Title: "Sample",
	})
	require.NoError(t, err)

	updated, err := rs.UploadImage(context.Background(), 1, created.ID, []byte("img"), "image/png")
	require.NoError(t, err)
	require.Equal(t, "uploads/recipe/fake.png", updated.Image)
	require.Len(t, media.saved, 1)
}

func TestUploadImageBadType(t *testing.T) {
	rs := newService(newFakeRecipeRepo(), newFakeCache(), &fakeMedia{})

	_, err := rs.UploadImage(context.Background(), 1, 1, []byte("%PDF-1.4"), "application/pdf")
	require.ErrorIs(t, err, recipeservice.ErrBadImage)
}

func TestUploadImageNotFound(t *testing.T) {
	media := &fakeMedia{}
	rs := newService(newFakeRecipeRepo(), newFakeCache(), media)

	_, err := rs.UploadImage(context.Background(), 1, 42, []byte("img"), "image/jpeg")
	require.ErrorIs(t, err, recipeservice.ErrNotFound)
	// Осиротевший файл удаляется.
	require.Equal(t, media.saved, media.removed)
}
