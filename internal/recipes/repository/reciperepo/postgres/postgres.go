package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yyzahran/Recipe-App/internal/pkg/config"
	"github.com/yyzahran/Recipe-App/internal/pkg/pgtools"
	"github.com/yyzahran/Recipe-App/internal/recipes/domain/models"
	repo "github.com/yyzahran/Recipe-App/internal/recipes/repository/reciperepo"
)

type RecipesPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (RecipesPostgresRepo, error) {
	db, err := pgtools.Connect(ctx, cfg)
	if err != nil {
		return RecipesPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return RecipesPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return RecipesPostgresRepo{
		db: db,
	}, nil
}

func (rr RecipesPostgresRepo) CreateRecipe(ctx context.Context, //nolint:nonamedreturns
	r models.Recipe,
) (id int64, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("recipes").
		Columns("user_id", "title", "description", "time_minutes", "price", "link", "image", "created_at", "updated_at").
		Values(r.UserID, r.Title, r.Description, r.TimeMinutes, r.Price, r.Link, r.Image, r.CreatedAt, r.UpdatedAt).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("scan error: %w", err)
	}

	if err = syncNames(ctx, tx, "tags", "recipe_tags", "tag_id", id, r.UserID, tagNames(r.Tags)); err != nil {
		return 0, err
	}

	if err = syncNames(ctx, tx, "ingredients", "recipe_ingredients", "ingredient_id",
		id, r.UserID, ingredientNames(r.Ingredients)); err != nil {
		return 0, err
	}

	return id, nil
}

func (rr RecipesPostgresRepo) UpdateRecipe(ctx context.Context, //nolint:nonamedreturns
	r models.Recipe, req repo.UpdateRequest,
) (err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("recipes").
		Set("title", r.Title).
		Set("description", r.Description).
		Set("time_minutes", r.TimeMinutes).
		Set("price", r.Price).
		Set("link", r.Link).
		Set("updated_at", r.UpdatedAt).
		Where(squirrel.Eq{"id": r.ID, "user_id": r.UserID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if req.ReplaceTags {
		if err = clearJoin(ctx, tx, "recipe_tags", r.ID); err != nil {
			return err
		}

		if err = syncNames(ctx, tx, "tags", "recipe_tags", "tag_id", r.ID, r.UserID, tagNames(r.Tags)); err != nil {
			return err
		}
	}

	if req.ReplaceIngredients {
		if err = clearJoin(ctx, tx, "recipe_ingredients", r.ID); err != nil {
			return err
		}

		if err = syncNames(ctx, tx, "ingredients", "recipe_ingredients", "ingredient_id",
			r.ID, r.UserID, ingredientNames(r.Ingredients)); err != nil {
			return err
		}
	}

	return nil
}

func (rr RecipesPostgresRepo) DeleteRecipe(ctx context.Context, userID, recipeID int64) (err error) { //nolint:nonamedreturns
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("recipes").
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	return nil
}

func (rr RecipesPostgresRepo) GetRecipe(ctx context.Context, userID, recipeID int64) (models.Recipe, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "user_id", "title", "description",
		"time_minutes", "price::text", "link", "image", "created_at", "updated_at").
		From("recipes").
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).ToSql()
	if err != nil {
		return models.Recipe{}, fmt.Errorf("to sql error: %w", err)
	}

	var r models.Recipe

	if err := rr.db.QueryRow(ctx, query, args...).Scan(
		&r.ID, &r.UserID, &r.Title, &r.Description, &r.TimeMinutes,
		&r.Price, &r.Link, &r.Image, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Recipe{}, repo.ErrNotFound
		}

		return models.Recipe{}, fmt.Errorf("scan error: %w", err)
	}

	if err := rr.loadAttachments(ctx, []*models.Recipe{&r}); err != nil {
		return models.Recipe{}, err
	}

	return r, nil
}

func (rr RecipesPostgresRepo) ListRecipes(ctx context.Context, req repo.ListRequest) ([]models.Recipe, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Select("id", "user_id", "title", "description",
		"time_minutes", "price::text", "link", "image", "created_at", "updated_at").
		From("recipes").
		Where(squirrel.Eq{"user_id": req.UserID})

	if len(req.TagIDs) != 0 {
		sb = sb.Where("EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.recipe_id = recipes.id AND rt.tag_id = ANY(?))",
			req.TagIDs)
	}

	if len(req.IngredientIDs) != 0 {
		sb = sb.Where("EXISTS (SELECT 1 FROM recipe_ingredients ri"+
			" WHERE ri.recipe_id = recipes.id AND ri.ingredient_id = ANY(?))",
			req.IngredientIDs)
	}

	query, args, err := sb.OrderBy("id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := rr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	recipes := make([]models.Recipe, 0, 10) //nolint:gomnd

	for rows.Next() {
		var r models.Recipe

		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.TimeMinutes,
			&r.Price, &r.Link, &r.Image, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		recipes = append(recipes, r)
	}

	ptrs := make([]*models.Recipe, len(recipes))
	for i := range recipes {
		ptrs[i] = &recipes[i]
	}

	if err := rr.loadAttachments(ctx, ptrs); err != nil {
		return nil, err
	}

	return recipes, nil
}

// SetRecipeImage stores the new image reference and returns the previous one
// so the caller can remove the stale file.
func (rr RecipesPostgresRepo) SetRecipeImage(ctx context.Context, //nolint:nonamedreturns
	userID, recipeID int64, image string,
) (old string, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "set image")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("image").
		From("recipes").
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).
		Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return "", fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&old); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repo.ErrNotFound
		}

		return "", fmt.Errorf("scan error: %w", err)
	}

	query, args, err = psql.Update("recipes").
		Set("image", image).
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).ToSql()
	if err != nil {
		return "", fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("exec error: %w", err)
	}

	return old, nil
}

func (rr RecipesPostgresRepo) ListTags(ctx context.Context, userID int64, assignedOnly bool) ([]models.Tag, error) {
	rows, err := rr.listNames(ctx, "tags", "recipe_tags", "tag_id", userID, assignedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]models.Tag, 0, 10) //nolint:gomnd

	for rows.Next() {
		var t models.Tag

		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		tags = append(tags, t)
	}

	return tags, nil
}

func (rr RecipesPostgresRepo) ListIngredients(ctx context.Context,
	userID int64, assignedOnly bool,
) ([]models.Ingredient, error) {
	rows, err := rr.listNames(ctx, "ingredients", "recipe_ingredients", "ingredient_id", userID, assignedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ingredients := make([]models.Ingredient, 0, 10) //nolint:gomnd

	for rows.Next() {
		var ing models.Ingredient

		if err := rows.Scan(&ing.ID, &ing.Name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		ingredients = append(ingredients, ing)
	}

	return ingredients, nil
}

func (rr RecipesPostgresRepo) UpdateTag(ctx context.Context, userID, tagID int64, name string) error {
	return rr.updateName(ctx, "tags", userID, tagID, name)
}

func (rr RecipesPostgresRepo) DeleteTag(ctx context.Context, userID, tagID int64) error {
	return rr.deleteName(ctx, "tags", userID, tagID)
}

func (rr RecipesPostgresRepo) UpdateIngredient(ctx context.Context, userID, ingredientID int64, name string) error {
	return rr.updateName(ctx, "ingredients", userID, ingredientID, name)
}

func (rr RecipesPostgresRepo) DeleteIngredient(ctx context.Context, userID, ingredientID int64) error {
	return rr.deleteName(ctx, "ingredients", userID, ingredientID)
}

func (rr RecipesPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		rr.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}

func (rr RecipesPostgresRepo) listNames(ctx context.Context,
	table, joinTable, joinCol string, userID int64, assignedOnly bool,
) (pgx.Rows, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Select("t.id", "t.name").
		From(table + " t").
		Where(squirrel.Eq{"t.user_id": userID})

	if assignedOnly {
		sb = sb.Distinct().
			Join(joinTable + " j ON j." + joinCol + " = t.id")
	}

	query, args, err := sb.OrderBy("t.name DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := rr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return rows, nil
}

func (rr RecipesPostgresRepo) updateName(ctx context.Context, table string, userID, id int64, name string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update(table).
		Set("name", name).
		Where(squirrel.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := rr.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	return nil
}

func (rr RecipesPostgresRepo) deleteName(ctx context.Context, table string, userID, id int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete(table).
		Where(squirrel.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := rr.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	return nil
}

// loadAttachments fills Tags and Ingredients for the given recipes.
func (rr RecipesPostgresRepo) loadAttachments(ctx context.Context, recipes []*models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Recipe, len(recipes))
	ids := make([]int64, 0, len(recipes))

	for _, r := range recipes {
		r.Tags = make([]models.Tag, 0)
		r.Ingredients = make([]models.Ingredient, 0)
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("j.recipe_id", "t.id", "t.name").
		From("recipe_tags j").
		Join("tags t ON t.id = j.tag_id").
		Where("j.recipe_id = ANY(?)", ids).
		OrderBy("t.name").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	rows, err := rr.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}

	for rows.Next() {
		var (
			recipeID int64
			t        models.Tag
		)

		if err := rows.Scan(&recipeID, &t.ID, &t.Name); err != nil {
			rows.Close()

			return fmt.Errorf("scan error: %w", err)
		}

		byID[recipeID].Tags = append(byID[recipeID].Tags, t)
	}
	rows.Close()

	query, args, err = psql.Select("j.recipe_id", "t.id", "t.name").
		From("recipe_ingredients j").
		Join("ingredients t ON t.id = j.ingredient_id").
		Where("j.recipe_id = ANY(?)", ids).
		OrderBy("t.name").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	rows, err = rr.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID int64
			ing      models.Ingredient
		)

		if err := rows.Scan(&recipeID, &ing.ID, &ing.Name); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		byID[recipeID].Ingredients = append(byID[recipeID].Ingredients, ing)
	}

	return nil
}

// syncNames gets or creates the named rows for the user and attaches them
// to the recipe through the join table.
func syncNames(ctx context.Context, tx pgx.Tx,
	table, joinTable, joinCol string, recipeID, userID int64, names []string,
) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	for _, name := range names {
		query, args, err := psql.Insert(table).
			Columns("user_id", "name").
			Values(userID, name).
			Suffix("ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name RETURNING id").ToSql()
		if err != nil {
			return fmt.Errorf("to sql error: %w", err)
		}

		var id int64

		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		query, args, err = psql.Insert(joinTable).
			Columns("recipe_id", joinCol).
			Values(recipeID, id).
			Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("to sql error: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("exec error: %w", err)
		}
	}

	return nil
}

func clearJoin(ctx context.Context, tx pgx.Tx, joinTable string, recipeID int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete(joinTable).
		Where(squirrel.Eq{"recipe_id": recipeID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}

	return names
}

func ingredientNames(ingredients []models.Ingredient) []string {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, ing.Name)
	}

	return names
}
