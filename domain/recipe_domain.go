package domain

import (
	"errors"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessGetRecipes           = "success get recipes"
	MessageSuccessGetRecipeDetail      = "success get recipe detail"
	MessageSuccessCreateRecipe         = "recipe created successfully"
	MessageSuccessUpdateRecipe         = "recipe updated successfully"
	MessageSuccessDeleteRecipe         = "recipe deleted successfully"
	MessageSuccessUploadRecipeImage    = "recipe image uploaded successfully"
	MessageSuccessAddFavorite          = "recipe added to favorites"
	MessageSuccessAddToShoppingList    = "recipe added to shopping list"
	MessageFailedGetRecipes            = "failed to get recipes"
	MessageFailedGetRecipeDetail       = "failed to get recipe detail"
	MessageFailedCreateRecipe          = "failed to create recipe"
	MessageFailedUpdateRecipe          = "failed to update recipe"
	MessageFailedDeleteRecipe          = "failed to delete recipe"
	MessageFailedUploadRecipeImage     = "failed to upload recipe image"
	MessageFailedAddFavorite           = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite        = "failed to remove recipe from favorites"
	MessageFailedAddToShoppingList     = "failed to add recipe to shopping list"
	MessageFailedRemoveFromShoppingList = "failed to remove recipe from shopping list"
	MessageFailedDownloadShoppingList  = "failed to download shopping list"

	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrNotRecipeAuthor     = errors.New("only the author can modify this recipe")
	ErrAlreadyFavorited    = errors.New("recipe already in favorites")
	ErrFavoriteNotFound    = errors.New("recipe is not in favorites")
	ErrAlreadyInCart       = errors.New("recipe already in shopping list")
	ErrCartEntryNotFound   = errors.New("recipe is not in shopping list")
	ErrInvalidQuantity     = errors.New("ingredient quantity must be positive")
	ErrInvalidCookingTime  = errors.New("cooking time must be at least one minute")
)

// ShoppingListHeader is the first line of the downloadable shopping list.
const ShoppingListHeader = "Купить в магазине:"

const ShoppingListFilename = "shopping_list.txt"

type (
	RecipeIngredientRequest struct {
		IngredientID string          `json:"ingredient_id" validate:"required,uuid"`
		Quantity     decimal.Decimal `json:"quantity" validate:"required"`
	}

	CreateRecipeRequest struct {
		Title       string                    `json:"title" validate:"required,max=255"`
		Description string                    `json:"description" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
		TagIDs      []string                  `json:"tag_ids" validate:"required,min=1,dive,uuid"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
	}

	UpdateRecipeRequest struct {
		Title       string                    `json:"title" validate:"required,max=255"`
		Description string                    `json:"description" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
		TagIDs      []string                  `json:"tag_ids" validate:"required,min=1,dive,uuid"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
	}

	UploadRecipeImageRequest struct {
		RecipeID string                `json:"recipe_id" form:"recipe_id" validate:"required,uuid"`
		Image    *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	RecipeIngredientResponse struct {
		ID              string          `json:"id"`
		Name            string          `json:"name"`
		MeasurementUnit string          `json:"measurement_unit"`
		Quantity        decimal.Decimal `json:"quantity"`
	}

	RecipeResponse struct {
		ID               string                     `json:"id"`
		Author           UserResponse               `json:"author"`
		Title            string                     `json:"title"`
		Description      string                     `json:"description"`
		ImageURL         string                     `json:"image_url,omitempty"`
		CookingTime      int                        `json:"cooking_time"`
		Tags             []TagResponse              `json:"tags"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		PubDate          time.Time                  `json:"pub_date"`
	}

	// RecipeSummary is the compact representation returned by the
	// favorite and shopping-list add operations.
	RecipeSummary struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		ImageURL    string `json:"image_url,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	RecipeFilter struct {
		AuthorID    string
		TagSlug     string
		FavoritedBy string
		InCartOf    string
	}

	// ShoppingListRow is one joined (cart -> recipe -> ingredient) row
	// before aggregation.
	ShoppingListRow struct {
		Name            string
		MeasurementUnit string
		Quantity        decimal.Decimal
	}

	// ShoppingListItem is one aggregated line of the shopping list.
	ShoppingListItem struct {
		Name            string          `json:"name"`
		MeasurementUnit string          `json:"measurement_unit"`
		Amount          decimal.Decimal `json:"amount"`
	}
)
