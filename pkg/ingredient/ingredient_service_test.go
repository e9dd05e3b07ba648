package ingredient

import (
	"context"
	"fmt"
	"testing"

	"github.com/Roman-sleep/foodgram-project-react/domain"
	"github.com/Roman-sleep/foodgram-project-react/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) (IngredientService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Ingredient{}, &entities.Tag{}))

	return NewIngredientService(NewIngredientRepository(db)), db
}

func seedIngredients(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, db.Create(&entities.Ingredient{
			ID:              uuid.New(),
			Name:            name,
			MeasurementUnit: "g",
		}).Error)
	}
}

func TestGetIngredientsPrefixSearch(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	seedIngredients(t, db, "salt", "salmon", "sugar", "basalt")

	results, err := svc.GetIngredients(ctx, "sal")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// prefix match only, sorted by name
	assert.Equal(t, "salmon", results[0].Name)
	assert.Equal(t, "salt", results[1].Name)
}

func TestGetIngredientsWithoutFilterReturnsAll(t *testing.T) {
	svc, db := setupService(t)

	seedIngredients(t, db, "salt", "sugar")

	results, err := svc.GetIngredients(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestGetIngredientByIDNotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetIngredientByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
}

func TestGetTags(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	tag := &entities.Tag{ID: uuid.New(), Name: "breakfast", ColorCode: "#E26C2D", Slug: "breakfast"}
	require.NoError(t, db.Create(tag).Error)

	tags, err := svc.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "breakfast", tags[0].Slug)

	got, err := svc.GetTagByID(ctx, tag.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "breakfast", got.Name)

	_, err = svc.GetTagByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}
