package recipeservice

type CreateRecipeRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TimeMinutes int      `json:"time_minutes"` //nolint:tagliatelle
	Price       string   `json:"price"`
	Link        string   `json:"link"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients"`
}

// UpdateRecipeRequest carries a partial update. Nil fields stay untouched;
// a non-nil Tags/Ingredients slice replaces the whole attachment set.
type UpdateRecipeRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	TimeMinutes *int      `json:"time_minutes"` //nolint:tagliatelle
	Price       *string   `json:"price"`
	Link        *string   `json:"link"`
	Tags        *[]string `json:"tags"`
	Ingredients *[]string `json:"ingredients"`
}

type ListRecipesRequest struct {
	UserID        int64
	TagIDs        []int64
	IngredientIDs []int64
}
