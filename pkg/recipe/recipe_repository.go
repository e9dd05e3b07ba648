package recipe

import (
	"context"
	"time"

	"github.com/Roman-sleep/foodgram-project-react/domain"
	"github.com/Roman-sleep/foodgram-project-react/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int) ([]*entities.Recipe, int64, error)
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tags []*entities.Tag) error
		DeleteRecipe(ctx context.Context, id string) error
		SetRecipeImage(ctx context.Context, id, imageURL string) error

		AddFavorite(ctx context.Context, userID, recipeID string) error
		RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error)
		IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)

		AddShoppingListEntry(ctx context.Context, userID, recipeID string) error
		RemoveShoppingListEntry(ctx context.Context, userID, recipeID string) (int64, error)
		IsInShoppingList(ctx context.Context, userID, recipeID string) (bool, error)
		GetShoppingListRows(ctx context.Context, userID string) ([]domain.ShoppingListRow, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	tags := recipe.Tags
	ingredients := recipe.Ingredients
	recipe.Tags = nil
	recipe.Ingredients = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}

		for _, ri := range ingredients {
			ri.RecipeID = recipe.ID
		}
		if len(ingredients) > 0 {
			if err := tx.Create(ingredients).Error; err != nil {
				return err
			}
		}

		if len(tags) > 0 {
			if err := tx.Model(recipe).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		return nil
	})

	recipe.Tags = tags
	recipe.Ingredients = ingredients
	return err
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&entities.Recipe{})
		if filter.AuthorID != "" {
			query = query.Where("recipes.author_id = ?", filter.AuthorID)
		}
		if filter.TagSlug != "" {
			query = query.
				Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug = ?", filter.TagSlug)
		}
		if filter.FavoritedBy != "" {
			query = query.
				Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
				Where("favorites.user_id = ?", filter.FavoritedBy)
		}
		if filter.InCartOf != "" {
			query = query.
				Joins("JOIN shopping_list_entries ON shopping_list_entries.recipe_id = recipes.id").
				Where("shopping_list_entries.user_id = ?", filter.InCartOf)
		}
		return query
	}

	if err := base().Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := base().
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Offset(offset).
		Limit(limit).
		Order("recipes.created_at desc").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, ingredients []*entities.RecipeIngredient, tags []*entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}

		for _, ri := range ingredients {
			ri.RecipeID = recipe.ID
		}
		if len(ingredients) > 0 {
			if err := tx.Create(ingredients).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}

		return tx.Omit("Author", "Tags", "Ingredients").Save(recipe).Error
	})
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	recipeUUID, err := uuid.Parse(id)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.ShoppingListEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Recipe{ID: recipeUUID}).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Recipe{}).Error
	})
}

func (r *recipeRepository) SetRecipeImage(ctx context.Context, id, imageURL string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("id = ?", id).
		Update("image_url", imageURL).Error
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return err
	}

	favorite := entities.Favorite{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipeUUID,
		AddedAt:  time.Now(),
	}

	return r.db.WithContext(ctx).Create(&favorite).Error
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) AddShoppingListEntry(ctx context.Context, userID, recipeID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return err
	}

	entry := entities.ShoppingListEntry{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipeUUID,
		AddedAt:  time.Now(),
	}

	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *recipeRepository) RemoveShoppingListEntry(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.ShoppingListEntry{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) IsInShoppingList(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ShoppingListEntry{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetShoppingListRows returns one row per ingredient occurrence across every
// recipe in the user's shopping cart. Summation happens in the service so
// quantities stay exact decimals end to end.
func (r *recipeRepository) GetShoppingListRows(ctx context.Context, userID string) ([]domain.ShoppingListRow, error) {
	var rows []domain.ShoppingListRow

	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.quantity AS quantity").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_list_entries ON shopping_list_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_list_entries.user_id = ?", userID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
