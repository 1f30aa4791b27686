package mock

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"costbook/internal/db"
	applog "costbook/internal/log"
	"costbook/internal/units"
	"costbook/models"
)

// New returns an in-memory sqlite database seeded with a small pizzeria kitchen.
func New(ctx context.Context) (*gorm.DB, error) {
	return open(ctx, "file:costbook-mock?mode=memory&cache=shared")
}

// NewNamed is New with a private in-memory database, so tests do not share state.
func NewNamed(ctx context.Context, name string) (*gorm.DB, error) {
	return open(ctx, fmt.Sprintf("file:costbook-mock-%s?mode=memory&cache=shared", name))
}

func open(ctx context.Context, dsn string) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database", "dsn", dsn)

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	var existing int64
	if err := database.WithContext(ctx).Model(&models.Recipe{}).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing == 0 {
		if err := seed(ctx, db.NewStore(database)); err != nil {
			return nil, err
		}
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, store *db.Store) error {
	applog.Debug(ctx, "seeding mock database")

	flour := models.Ingredient{Title: "Flour 00", BaseUnits: units.Kilograms, UnitCost: 1.20, Notes: "Finely milled soft wheat."}
	water := models.Ingredient{Title: "Water", BaseUnits: units.Liters, UnitCost: 0.002}
	yeast := models.Ingredient{Title: "Fresh Yeast", BaseUnits: units.Grams, UnitCost: 0.01}
	salt := models.Ingredient{Title: "Sea Salt", BaseUnits: units.Kilograms, UnitCost: 0.80}
	tomatoes := models.Ingredient{Title: "San Marzano Tomatoes", BaseUnits: units.Kilograms, UnitCost: 4.50}
	oil := models.Ingredient{Title: "Olive Oil", BaseUnits: units.Liters, UnitCost: 9.00}
	mozzarella := models.Ingredient{Title: "Mozzarella", BaseUnits: units.Kilograms, UnitCost: 11.00}
	basil := models.Ingredient{Title: "Basil", BaseUnits: units.Units, UnitCost: 0.05, Notes: "Priced per leaf."}

	for _, ingredient := range []*models.Ingredient{&flour, &water, &yeast, &salt, &tomatoes, &oil, &mozzarella, &basil} {
		if err := store.SaveIngredient(ctx, ingredient); err != nil {
			return fmt.Errorf("seed ingredient %q: %w", ingredient.Title, err)
		}
	}

	dough := models.Recipe{Title: "Pizza Dough", Produces: 4, Units: units.Units, Status: models.RecipeStatusActive, Notes: "Four 250 g balls."}
	sauce := models.Recipe{Title: "Tomato Sauce", Produces: 1, Units: units.Liters, Status: models.RecipeStatusActive}
	margherita := models.Recipe{Title: "Margherita", Produces: 1, Units: units.Units, Status: models.RecipeStatusActive, ShowInMenu: true}
	marinara := models.Recipe{Title: "Marinara", Produces: 1, Units: units.Units, Status: models.RecipeStatusActive, ShowInMenu: true}

	for _, recipe := range []*models.Recipe{&dough, &sauce, &margherita, &marinara} {
		if err := store.SaveRecipe(ctx, recipe); err != nil {
			return fmt.Errorf("seed recipe %q: %w", recipe.Title, err)
		}
	}

	ingredientRelations := []models.IngredientRelation{
		{ParentRecipeID: dough.ID, ChildIngredientID: flour.ID, Quantity: 600, Units: units.Grams},
		{ParentRecipeID: dough.ID, ChildIngredientID: water.ID, Quantity: 390, Units: units.Milliliters},
		{ParentRecipeID: dough.ID, ChildIngredientID: yeast.ID, Quantity: 2, Units: units.Grams},
		{ParentRecipeID: dough.ID, ChildIngredientID: salt.ID, Quantity: 18, Units: units.Grams},
		{ParentRecipeID: sauce.ID, ChildIngredientID: tomatoes.ID, Quantity: 800, Units: units.Grams},
		{ParentRecipeID: sauce.ID, ChildIngredientID: oil.ID, Quantity: 2, Units: units.Tablespoons},
		{ParentRecipeID: sauce.ID, ChildIngredientID: salt.ID, Quantity: 6, Units: units.Grams},
		{ParentRecipeID: margherita.ID, ChildIngredientID: mozzarella.ID, Quantity: 125, Units: units.Grams},
		{ParentRecipeID: margherita.ID, ChildIngredientID: basil.ID, Quantity: 4, Units: units.Units},
		{ParentRecipeID: marinara.ID, ChildIngredientID: oil.ID, Quantity: 1, Units: units.Tablespoons},
	}
	for i := range ingredientRelations {
		if err := store.SaveIngredientRelation(ctx, &ingredientRelations[i]); err != nil {
			return fmt.Errorf("seed ingredient relation %d: %w", i, err)
		}
	}

	subRecipeRelations := []models.SubRecipeRelation{
		{ParentRecipeID: margherita.ID, ChildRecipeID: dough.ID, Quantity: 1, Units: units.Units},
		{ParentRecipeID: margherita.ID, ChildRecipeID: sauce.ID, Quantity: 80, Units: units.Milliliters},
		{ParentRecipeID: marinara.ID, ChildRecipeID: dough.ID, Quantity: 1, Units: units.Units},
		{ParentRecipeID: marinara.ID, ChildRecipeID: sauce.ID, Quantity: 100, Units: units.Milliliters},
	}
	for i := range subRecipeRelations {
		if err := store.SaveSubRecipeRelation(ctx, &subRecipeRelations[i]); err != nil {
			return fmt.Errorf("seed sub-recipe relation %d: %w", i, err)
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
