package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yyzahran/Recipe-App/internal/pkg/config"
	"github.com/yyzahran/Recipe-App/internal/pkg/redistools"
	"github.com/yyzahran/Recipe-App/internal/recipes/domain/models"
)

var ErrCacheMiss = errors.New("recipe not cached")

// RecipeCache is a read-through cache of recipe details keyed by id.
type RecipeCache struct {
	rdb     *redis.Client
	expTime time.Duration
}

func New(ctx context.Context, cfg config.RedisCache) (RecipeCache, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return RecipeCache{}, fmt.Errorf("connect error: %w", err)
	}

	return RecipeCache{
		rdb:     rdb,
		expTime: cfg.ExpTime,
	}, nil
}

func (rc RecipeCache) SetRecipe(ctx context.Context, recipe models.Recipe) error {
	recipeJSON, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if _, err := rc.rdb.Set(ctx, key(recipe.ID), recipeJSON, rc.expTime).Result(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (rc RecipeCache) GetRecipe(ctx context.Context, recipeID int64) (models.Recipe, error) {
	recipeJSON, err := rc.rdb.Get(ctx, key(recipeID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Recipe{}, ErrCacheMiss
		}

		return models.Recipe{}, fmt.Errorf("get error: %w", err)
	}

	var r models.Recipe

	if err := json.Unmarshal([]byte(recipeJSON), &r); err != nil {
		return models.Recipe{}, fmt.Errorf("unmarshal error: %w", err)
	}

	return r, nil
}

func (rc RecipeCache) DeleteRecipe(ctx context.Context, recipeID int64) error {
	if _, err := rc.rdb.Del(ctx, key(recipeID)).Result(); err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	return nil
}

func key(recipeID int64) string {
	return "recipe:" + strconv.FormatInt(recipeID, 10)
}
