package reciperepo

import "errors"

var ErrNotFound = errors.New("recipe not found")

type ListRequest struct {
	UserID        int64
	TagIDs        []int64
	IngredientIDs []int64
}

// UpdateRequest carries a full recipe row plus flags telling whether the
// tag and ingredient attachment sets should be replaced.
type UpdateRequest struct {
	ReplaceTags        bool
	ReplaceIngredients bool
}
