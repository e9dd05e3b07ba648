package recipe

import (
	"context"
	"fmt"
	"testing"

	"github.com/Roman-sleep/foodgram-project-react/domain"
	"github.com/Roman-sleep/foodgram-project-react/entities"
	"github.com/Roman-sleep/foodgram-project-react/pkg/ingredient"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Follow{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingListEntry{},
	))

	return db
}

func setupService(t *testing.T) (RecipeService, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	return NewRecipeService(
		NewRecipeRepository(db),
		ingredient.NewIngredientRepository(db),
		nil,
	), db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		ID:       uuid.New(),
		Email:    username + "@example.com",
		Username: username,
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *entities.Ingredient {
	t.Helper()
	ing := &entities.Ingredient{
		ID:              uuid.New(),
		Name:            name,
		MeasurementUnit: unit,
	}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func seedRecipe(t *testing.T, db *gorm.DB, author *entities.User, title string, ingredients map[*entities.Ingredient]string) *entities.Recipe {
	t.Helper()
	rec := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Title:       title,
		Description: "test recipe",
		CookingTime: 30,
	}
	require.NoError(t, db.Create(rec).Error)

	for ing, quantity := range ingredients {
		require.NoError(t, db.Create(&entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     rec.ID,
			IngredientID: ing.ID,
			Quantity:     decimal.RequireFromString(quantity),
		}).Error)
	}
	return rec
}

func addToCart(t *testing.T, db *gorm.DB, user *entities.User, rec *entities.Recipe) {
	t.Helper()
	require.NoError(t, db.Create(&entities.ShoppingListEntry{
		ID:       uuid.New(),
		UserID:   user.ID,
		RecipeID: rec.ID,
	}).Error)
}

func TestAggregateShoppingListSumsByNameAndUnit(t *testing.T) {
	rows := []domain.ShoppingListRow{
		{Name: "flour", MeasurementUnit: "g", Quantity: decimal.RequireFromString("200")},
		{Name: "flour", MeasurementUnit: "g", Quantity: decimal.RequireFromString("150")},
		{Name: "sugar", MeasurementUnit: "g", Quantity: decimal.RequireFromString("100")},
		{Name: "sugar", MeasurementUnit: "tbsp", Quantity: decimal.RequireFromString("2")},
	}

	items := aggregateShoppingList(rows)

	require.Len(t, items, 3)
	assert.Equal(t, "flour", items[0].Name)
	assert.Equal(t, "g", items[0].MeasurementUnit)
	assert.True(t, items[0].Amount.Equal(decimal.RequireFromString("350")))

	// same name, different units stay separate and sort by unit
	assert.Equal(t, "sugar", items[1].Name)
	assert.Equal(t, "g", items[1].MeasurementUnit)
	assert.True(t, items[1].Amount.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, "sugar", items[2].Name)
	assert.Equal(t, "tbsp", items[2].MeasurementUnit)
	assert.True(t, items[2].Amount.Equal(decimal.RequireFromString("2")))
}

func TestAggregateShoppingListExactDecimals(t *testing.T) {
	rows := []domain.ShoppingListRow{
		{Name: "milk", MeasurementUnit: "l", Quantity: decimal.RequireFromString("0.1")},
		{Name: "milk", MeasurementUnit: "l", Quantity: decimal.RequireFromString("0.2")},
	}

	items := aggregateShoppingList(rows)

	require.Len(t, items, 1)
	assert.Equal(t, "0.3", items[0].Amount.String())
}

func TestBuildShoppingListDocument(t *testing.T) {
	doc := buildShoppingListDocument([]domain.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Amount: decimal.RequireFromString("350")},
		{Name: "sugar", MeasurementUnit: "tbsp", Amount: decimal.RequireFromString("2.5")},
	})

	expected := "Купить в магазине:\nflour (g) - 350\nsugar (tbsp) - 2.5"
	assert.Equal(t, expected, doc)
}

func TestBuildShoppingListDocumentEmptyCart(t *testing.T) {
	doc := buildShoppingListDocument(nil)
	assert.Equal(t, "Купить в магазине:", doc)
}

func TestDownloadShoppingListAcrossRecipes(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	buyer := seedUser(t, db, "buyer")
	flour := seedIngredient(t, db, "flour", "g")
	sugar := seedIngredient(t, db, "sugar", "g")

	pancakes := seedRecipe(t, db, author, "Pancakes", map[*entities.Ingredient]string{
		flour: "200",
		sugar: "100",
	})
	bread := seedRecipe(t, db, author, "Bread", map[*entities.Ingredient]string{
		flour: "150",
	})
	addToCart(t, db, buyer, pancakes)
	addToCart(t, db, buyer, bread)

	doc, err := svc.DownloadShoppingList(ctx, buyer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Купить в магазине:\nflour (g) - 350\nsugar (g) - 100", doc)

	// read-only: aggregating again yields the same document
	again, err := svc.DownloadShoppingList(ctx, buyer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestDownloadShoppingListEmptyCart(t *testing.T) {
	svc, db := setupService(t)

	buyer := seedUser(t, db, "buyer")

	doc, err := svc.DownloadShoppingList(context.Background(), buyer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Купить в магазине:", doc)
}

func TestDownloadShoppingListIgnoresOtherUsers(t *testing.T) {
	svc, db := setupService(t)

	author := seedUser(t, db, "author")
	buyer := seedUser(t, db, "buyer")
	other := seedUser(t, db, "other")
	flour := seedIngredient(t, db, "flour", "g")

	rec := seedRecipe(t, db, author, "Bread", map[*entities.Ingredient]string{flour: "500"})
	addToCart(t, db, other, rec)

	doc, err := svc.DownloadShoppingList(context.Background(), buyer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Купить в магазине:", doc)
}

func TestFavoriteRecipeDuplicate(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	fan := seedUser(t, db, "fan")
	rec := seedRecipe(t, db, author, "Pancakes", nil)

	summary, err := svc.FavoriteRecipe(ctx, rec.ID.String(), fan.ID.String())
	require.NoError(t, err)
	assert.Equal(t, rec.ID.String(), summary.ID)
	assert.Equal(t, "Pancakes", summary.Title)
	assert.Equal(t, 30, summary.CookingTime)

	_, err = svc.FavoriteRecipe(ctx, rec.ID.String(), fan.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)

	var count int64
	require.NoError(t, db.Model(&entities.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", fan.ID, rec.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFavoriteUnknownRecipe(t *testing.T) {
	svc, db := setupService(t)

	fan := seedUser(t, db, "fan")

	_, err := svc.FavoriteRecipe(context.Background(), uuid.NewString(), fan.ID.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestUnfavoriteNeverAdded(t *testing.T) {
	svc, db := setupService(t)

	author := seedUser(t, db, "author")
	fan := seedUser(t, db, "fan")
	rec := seedRecipe(t, db, author, "Pancakes", nil)

	err := svc.UnfavoriteRecipe(context.Background(), rec.ID.String(), fan.ID.String())
	assert.ErrorIs(t, err, domain.ErrFavoriteNotFound)
}

func TestShoppingListMembership(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	buyer := seedUser(t, db, "buyer")
	rec := seedRecipe(t, db, author, "Bread", nil)

	_, err := svc.AddToShoppingList(ctx, rec.ID.String(), buyer.ID.String())
	require.NoError(t, err)

	_, err = svc.AddToShoppingList(ctx, rec.ID.String(), buyer.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyInCart)

	require.NoError(t, svc.RemoveFromShoppingList(ctx, rec.ID.String(), buyer.ID.String()))

	err = svc.RemoveFromShoppingList(ctx, rec.ID.String(), buyer.ID.String())
	assert.ErrorIs(t, err, domain.ErrCartEntryNotFound)
}

func TestCreateRecipeValidatesCookingTime(t *testing.T) {
	svc, db := setupService(t)

	author := seedUser(t, db, "author")

	_, err := svc.CreateRecipe(context.Background(), domain.CreateRecipeRequest{
		Title:       "Bad",
		Description: "cooking time below one minute",
		CookingTime: 0,
	}, author.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidCookingTime)
}

func TestCreateRecipeRejectsNonPositiveQuantity(t *testing.T) {
	svc, db := setupService(t)

	author := seedUser(t, db, "author")
	flour := seedIngredient(t, db, "flour", "g")
	tag := &entities.Tag{ID: uuid.New(), Name: "dinner", Slug: "dinner"}
	require.NoError(t, db.Create(tag).Error)

	_, err := svc.CreateRecipe(context.Background(), domain.CreateRecipeRequest{
		Title:       "Bad",
		Description: "zero flour",
		CookingTime: 10,
		TagIDs:      []string{tag.ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{
			{IngredientID: flour.ID.String(), Quantity: decimal.Zero},
		},
	}, author.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCreateAndGetRecipeDetail(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	flour := seedIngredient(t, db, "flour", "g")
	tag := &entities.Tag{ID: uuid.New(), Name: "breakfast", Slug: "breakfast"}
	require.NoError(t, db.Create(tag).Error)

	created, err := svc.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Title:       "Pancakes",
		Description: "flour and heat",
		CookingTime: 1,
		TagIDs:      []string{tag.ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{
			{IngredientID: flour.ID.String(), Quantity: decimal.RequireFromString("200")},
		},
	}, author.ID.String())
	require.NoError(t, err)

	detail, err := svc.GetRecipeDetail(ctx, created.ID, author.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", detail.Title)
	assert.Equal(t, 1, detail.CookingTime)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "breakfast", detail.Tags[0].Slug)
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "flour", detail.Ingredients[0].Name)
	assert.Equal(t, "g", detail.Ingredients[0].MeasurementUnit)
	assert.True(t, detail.Ingredients[0].Quantity.Equal(decimal.RequireFromString("200")))
	assert.Equal(t, author.Username, detail.Author.Username)
}

func TestUpdateRecipeAuthorOnly(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	stranger := seedUser(t, db, "stranger")
	flour := seedIngredient(t, db, "flour", "g")
	tag := &entities.Tag{ID: uuid.New(), Name: "dinner", Slug: "dinner"}
	require.NoError(t, db.Create(tag).Error)

	rec := seedRecipe(t, db, author, "Bread", map[*entities.Ingredient]string{flour: "500"})

	req := domain.UpdateRecipeRequest{
		Title:       "Sourdough",
		Description: "updated",
		CookingTime: 90,
		TagIDs:      []string{tag.ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{
			{IngredientID: flour.ID.String(), Quantity: decimal.RequireFromString("650")},
		},
	}

	_, err := svc.UpdateRecipe(ctx, rec.ID.String(), req, stranger.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotRecipeAuthor)

	updated, err := svc.UpdateRecipe(ctx, rec.ID.String(), req, author.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Sourdough", updated.Title)
	require.Len(t, updated.Ingredients, 1)
	assert.True(t, updated.Ingredients[0].Quantity.Equal(decimal.RequireFromString("650")))
}

func TestDeleteRecipeCascadesOwnedRows(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	buyer := seedUser(t, db, "buyer")
	flour := seedIngredient(t, db, "flour", "g")
	rec := seedRecipe(t, db, author, "Bread", map[*entities.Ingredient]string{flour: "500"})
	addToCart(t, db, buyer, rec)

	err := svc.DeleteRecipe(ctx, rec.ID.String(), buyer.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotRecipeAuthor)

	require.NoError(t, svc.DeleteRecipe(ctx, rec.ID.String(), author.ID.String()))

	var riCount, cartCount int64
	require.NoError(t, db.Model(&entities.RecipeIngredient{}).Where("recipe_id = ?", rec.ID).Count(&riCount).Error)
	require.NoError(t, db.Model(&entities.ShoppingListEntry{}).Where("recipe_id = ?", rec.ID).Count(&cartCount).Error)
	assert.Zero(t, riCount)
	assert.Zero(t, cartCount)

	_, err = svc.GetRecipeDetail(ctx, rec.ID.String(), author.ID.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}
