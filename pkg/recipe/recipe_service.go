package recipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Roman-sleep/foodgram-project-react/domain"
	"github.com/Roman-sleep/foodgram-project-react/entities"
	"github.com/Roman-sleep/foodgram-project-react/internal/utils/storage"
	"github.com/Roman-sleep/foodgram-project-react/pkg/ingredient"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error)
		GetRecipeDetail(ctx context.Context, recipeID string, userID string) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, userID string) ([]domain.RecipeResponse, int64, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		UploadRecipeImage(ctx context.Context, req domain.UploadRecipeImageRequest, userID string) (string, error)

		FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error)
		UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error
		AddToShoppingList(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error)
		RemoveFromShoppingList(ctx context.Context, recipeID, userID string) error
		DownloadShoppingList(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		ingredientRepository ingredient.IngredientRepository
		s3                   storage.AwsS3
	}
)

func NewRecipeService(recipeRepository RecipeRepository, ingredientRepository ingredient.IngredientRepository, s3 storage.AwsS3) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		ingredientRepository: ingredientRepository,
		s3:                   s3,
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	if req.CookingTime < 1 {
		return domain.RecipeResponse{}, domain.ErrInvalidCookingTime
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	tags, _, err := s.resolveTagsAndIngredients(ctx, req.TagIDs, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    userUUID,
		Title:       req.Title,
		Description: req.Description,
		CookingTime: req.CookingTime,
		Tags:        tags,
	}

	recipe.Ingredients = buildRecipeIngredients(recipe.ID, req.Ingredients)

	if err := s.recipeRepository.CreateRecipe(ctx, &recipe); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), userID)
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	return s.toRecipeResponse(ctx, recipe, userID), nil
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, userID string) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		result = append(result, s.toRecipeResponse(ctx, recipe, userID))
	}

	return result, count, nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	if req.CookingTime < 1 {
		return domain.RecipeResponse{}, domain.ErrInvalidCookingTime
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if recipe.AuthorID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	tags, _, err := s.resolveTagsAndIngredients(ctx, req.TagIDs, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe.Title = req.Title
	recipe.Description = req.Description
	recipe.CookingTime = req.CookingTime
	recipe.Author = nil
	recipe.Tags = nil
	recipe.Ingredients = nil

	ingredients := buildRecipeIngredients(recipe.ID, req.Ingredients)
	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, ingredients, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if recipe.AuthorID.String() != userID {
		return domain.ErrNotRecipeAuthor
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) UploadRecipeImage(ctx context.Context, req domain.UploadRecipeImageRequest, userID string) (string, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, req.RecipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrRecipeNotFound
		}
		return "", err
	}

	if recipe.AuthorID.String() != userID {
		return "", domain.ErrNotRecipeAuthor
	}

	imageURL, err := s.s3.UploadFile(
		fmt.Sprintf("recipe-%s", recipe.ID.String()),
		req.Image,
		"recipes",
		storage.AllowImage...,
	)
	if err != nil {
		return "", err
	}

	if err := s.recipeRepository.SetRecipeImage(ctx, req.RecipeID, imageURL); err != nil {
		return "", err
	}

	return imageURL, nil
}

func (s *recipeService) FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeSummary{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeSummary{}, err
	}

	// Friendly pre-check; the unique constraint on (user_id, recipe_id) is
	// the authority when two identical requests race.
	favorited, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}
	if favorited {
		return domain.RecipeSummary{}, domain.ErrAlreadyFavorited
	}

	if err := s.recipeRepository.AddFavorite(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeSummary{}, domain.ErrAlreadyFavorited
		}
		return domain.RecipeSummary{}, err
	}

	return toRecipeSummary(recipe), nil
}

func (s *recipeService) UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	affected, err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (s *recipeService) AddToShoppingList(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeSummary{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeSummary{}, err
	}

	inCart, err := s.recipeRepository.IsInShoppingList(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}
	if inCart {
		return domain.RecipeSummary{}, domain.ErrAlreadyInCart
	}

	if err := s.recipeRepository.AddShoppingListEntry(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeSummary{}, domain.ErrAlreadyInCart
		}
		return domain.RecipeSummary{}, err
	}

	return toRecipeSummary(recipe), nil
}

func (s *recipeService) RemoveFromShoppingList(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	affected, err := s.recipeRepository.RemoveShoppingListEntry(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrCartEntryNotFound
	}
	return nil
}

func (s *recipeService) DownloadShoppingList(ctx context.Context, userID string) (string, error) {
	rows, err := s.recipeRepository.GetShoppingListRows(ctx, userID)
	if err != nil {
		return "", err
	}

	return buildShoppingListDocument(aggregateShoppingList(rows)), nil
}

// aggregateShoppingList groups rows by (name, measurement unit) and sums
// quantities with exact decimal arithmetic. Ingredients sharing a name but
// measured in different units are kept apart.
func aggregateShoppingList(rows []domain.ShoppingListRow) []domain.ShoppingListItem {
	type groupKey struct {
		name string
		unit string
	}

	totals := make(map[groupKey]decimal.Decimal, len(rows))
	for _, row := range rows {
		key := groupKey{name: row.Name, unit: row.MeasurementUnit}
		totals[key] = totals[key].Add(row.Quantity)
	}

	items := make([]domain.ShoppingListItem, 0, len(totals))
	for key, amount := range totals {
		items = append(items, domain.ShoppingListItem{
			Name:            key.name,
			MeasurementUnit: key.unit,
			Amount:          amount,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})

	return items
}

func buildShoppingListDocument(items []domain.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(domain.ShoppingListHeader)
	for _, item := range items {
		b.WriteString(fmt.Sprintf("\n%s (%s) - %s", item.Name, item.MeasurementUnit, item.Amount.String()))
	}
	return b.String()
}

func (s *recipeService) resolveTagsAndIngredients(ctx context.Context, tagIDs []string, ingredients []domain.RecipeIngredientRequest) ([]*entities.Tag, []*entities.Ingredient, error) {
	for _, ing := range ingredients {
		if !ing.Quantity.IsPositive() {
			return nil, nil, domain.ErrInvalidQuantity
		}
	}

	tags, err := s.ingredientRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, nil, domain.ErrTagNotFound
	}

	ingredientIDs := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		ingredientIDs = append(ingredientIDs, ing.IngredientID)
	}

	catalog, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(catalog) != len(ingredientIDs) {
		return nil, nil, domain.ErrIngredientNotFound
	}

	return tags, catalog, nil
}

func buildRecipeIngredients(recipeID uuid.UUID, reqs []domain.RecipeIngredientRequest) []*entities.RecipeIngredient {
	result := make([]*entities.RecipeIngredient, 0, len(reqs))
	for _, req := range reqs {
		result = append(result, &entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: uuid.MustParse(req.IngredientID),
			Quantity:     req.Quantity,
		})
	}
	return result
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, userID string) domain.RecipeResponse {
	isFavorited := false
	isInCart := false
	if userID != "" {
		isFavorited, _ = s.recipeRepository.IsFavorited(ctx, userID, recipe.ID.String())
		isInCart, _ = s.recipeRepository.IsInShoppingList(ctx, userID, recipe.ID.String())
	}

	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:        tag.ID.String(),
			Name:      tag.Name,
			ColorCode: tag.ColorCode,
			Slug:      tag.Slug,
		})
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, ri := range recipe.Ingredients {
		res := domain.RecipeIngredientResponse{
			ID:       ri.IngredientID.String(),
			Quantity: ri.Quantity,
		}
		if ri.Ingredient != nil {
			res.Name = ri.Ingredient.Name
			res.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, res)
	}

	author := domain.UserResponse{}
	if recipe.Author != nil {
		author = domain.UserResponse{
			ID:        recipe.Author.ID.String(),
			Email:     recipe.Author.Email,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
		}
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Author:           author,
		Title:            recipe.Title,
		Description:      recipe.Description,
		ImageURL:         recipe.ImageURL,
		CookingTime:      recipe.CookingTime,
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		PubDate:          recipe.CreatedAt,
	}
}

func toRecipeSummary(recipe *entities.Recipe) domain.RecipeSummary {
	return domain.RecipeSummary{
		ID:          recipe.ID.String(),
		Title:       recipe.Title,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
