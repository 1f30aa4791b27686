package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"gorm.io/gorm"

	"costbook/internal/costing"
	applog "costbook/internal/log"
	"costbook/internal/units"
	"costbook/models"
)

var (
	ErrTitleRequired     = errors.New("title is required")
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrInvalidQuantity   = errors.New("quantity must be a finite number not below zero")
	ErrInvalidUnitCost   = errors.New("unit cost must be a finite number not below zero")
	ErrInvalidProduces   = errors.New("produces must be a finite number greater than zero")
	ErrIncompatibleUnits = errors.New("units are not compatible with the child item")
)

// Store is the persistence collaborator of the costing engine. Reads are served as
// costing snapshots; relation writes run the cycle guard inside the writing transaction.
type Store struct {
	db *gorm.DB

	// subRecipeMu serializes the cycle guard and the write that follows it.
	subRecipeMu sync.Mutex
}

// NewStore wraps an open database handle.
func NewStore(database *gorm.DB) *Store {
	return &Store{db: database}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Snapshot loads every ingredient, recipe and relation inside one transaction so the
// resolver sees a consistent view.
func (s *Store) Snapshot(ctx context.Context) (*costing.Snapshot, error) {
	var (
		ingredients []models.Ingredient
		recipes     []models.Recipe
		ingRels     []models.IngredientRelation
		subRels     []models.SubRecipeRelation
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Find(&ingredients).Error; err != nil {
			return fmt.Errorf("load ingredients: %w", err)
		}
		if err := tx.Find(&recipes).Error; err != nil {
			return fmt.Errorf("load recipes: %w", err)
		}
		if err := tx.Find(&ingRels).Error; err != nil {
			return fmt.Errorf("load ingredient relations: %w", err)
		}
		if err := tx.Find(&subRels).Error; err != nil {
			return fmt.Errorf("load sub-recipe relations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "snapshot loaded",
		"ingredients", len(ingredients),
		"recipes", len(recipes),
		"ingredientRelations", len(ingRels),
		"subRecipeRelations", len(subRels),
	)
	return costing.NewSnapshot(ingredients, recipes, ingRels, subRels), nil
}

// ListIngredients returns ingredients ordered by title.
func (s *Store) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	var results []models.Ingredient
	if err := s.db.WithContext(ctx).Order("title asc, id asc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetIngredient loads one ingredient or returns gorm.ErrRecordNotFound.
func (s *Store) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// FindIngredientByTitle looks an ingredient up by title, ignoring case.
func (s *Store) FindIngredientByTitle(ctx context.Context, title string) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).
		Where("LOWER(title) = ?", strings.ToLower(strings.TrimSpace(title))).
		Order("id asc").
		First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// SaveIngredient creates the ingredient when its ID is zero and updates it otherwise.
func (s *Store) SaveIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	if err := validateIngredient(ingredient); err != nil {
		return err
	}
	if ingredient.ID == 0 {
		return s.db.WithContext(ctx).Create(ingredient).Error
	}

	updates := map[string]any{
		"title":      ingredient.Title,
		"base_units": ingredient.BaseUnits,
		"unit_cost":  ingredient.UnitCost,
		"notes":      ingredient.Notes,
	}
	result := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id = ?", ingredient.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteIngredient soft-deletes the ingredient. Relations that use it are kept and
// resolve as missing entities.
func (s *Store) DeleteIngredient(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Ingredient{}, id).Error
}

// ListRecipes returns recipes ordered by title.
func (s *Store) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	var results []models.Recipe
	if err := s.db.WithContext(ctx).Order("title asc, id asc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetRecipe loads one recipe with its relations.
func (s *Store) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).
		Preload("Ingredients").
		Preload("SubRecipes").
		First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// SaveRecipe creates the recipe when its ID is zero and updates it otherwise.
func (s *Store) SaveRecipe(ctx context.Context, recipe *models.Recipe) error {
	if err := validateRecipe(recipe); err != nil {
		return err
	}
	if recipe.ID == 0 {
		return s.db.WithContext(ctx).Omit("Ingredients", "SubRecipes").Create(recipe).Error
	}

	updates := map[string]any{
		"title":        recipe.Title,
		"produces":     recipe.Produces,
		"units":        recipe.Units,
		"status":       recipe.Status,
		"show_in_menu": recipe.ShowInMenu,
		"notes":        recipe.Notes,
	}
	result := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRecipe soft-deletes the recipe and the relations it owns. Relations in other
// recipes that point at it are kept and resolve as missing entities.
func (s *Store) DeleteRecipe(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_recipe_id = ?", id).Delete(&models.IngredientRelation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_recipe_id = ?", id).Delete(&models.SubRecipeRelation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
}

// ListIngredientRelations lists relations, optionally restricted to one parent recipe.
func (s *Store) ListIngredientRelations(ctx context.Context, parentRecipeID uint) ([]models.IngredientRelation, error) {
	query := s.db.WithContext(ctx).Order("parent_recipe_id asc, id asc")
	if parentRecipeID != 0 {
		query = query.Where("parent_recipe_id = ?", parentRecipeID)
	}
	var results []models.IngredientRelation
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetIngredientRelation loads one relation or returns gorm.ErrRecordNotFound.
func (s *Store) GetIngredientRelation(ctx context.Context, id uint) (*models.IngredientRelation, error) {
	var rel models.IngredientRelation
	if err := s.db.WithContext(ctx).First(&rel, id).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

// SaveIngredientRelation attaches an ingredient to a recipe, or updates the relation
// when its ID is set. The units must belong to the ingredient's category.
func (s *Store) SaveIngredientRelation(ctx context.Context, rel *models.IngredientRelation) error {
	if err := validateQuantity(rel.Quantity, rel.Units); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRecipe(tx, rel.ParentRecipeID); err != nil {
			return err
		}
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, rel.ChildIngredientID).Error; err != nil {
			return fmt.Errorf("ingredient %d: %w", rel.ChildIngredientID, err)
		}
		if !units.AreCompatible(rel.Units, ingredient.BaseUnits) {
			return fmt.Errorf("%w: %s cannot measure %s (%s)", ErrIncompatibleUnits, rel.Units, ingredient.Title, ingredient.BaseUnits)
		}

		if rel.ID == 0 {
			return tx.Create(rel).Error
		}
		return updateRelation(tx, &models.IngredientRelation{}, rel.ID, map[string]any{
			"parent_recipe_id":    rel.ParentRecipeID,
			"child_ingredient_id": rel.ChildIngredientID,
			"quantity":            rel.Quantity,
			"units":               rel.Units,
		})
	})
}

// DeleteIngredientRelation detaches an ingredient from its recipe.
func (s *Store) DeleteIngredientRelation(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.IngredientRelation{}, id).Error
}

// ListSubRecipeRelations lists relations, optionally restricted to one parent recipe.
func (s *Store) ListSubRecipeRelations(ctx context.Context, parentRecipeID uint) ([]models.SubRecipeRelation, error) {
	query := s.db.WithContext(ctx).Order("parent_recipe_id asc, id asc")
	if parentRecipeID != 0 {
		query = query.Where("parent_recipe_id = ?", parentRecipeID)
	}
	var results []models.SubRecipeRelation
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetSubRecipeRelation loads one relation or returns gorm.ErrRecordNotFound.
func (s *Store) GetSubRecipeRelation(ctx context.Context, id uint) (*models.SubRecipeRelation, error) {
	var rel models.SubRecipeRelation
	if err := s.db.WithContext(ctx).First(&rel, id).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

// SaveSubRecipeRelation attaches a recipe to a parent recipe, or repoints the relation
// when its ID is set. The write is refused with costing.ErrCycleDetected, and nothing is
// stored, when the new edge would close a loop.
func (s *Store) SaveSubRecipeRelation(ctx context.Context, rel *models.SubRecipeRelation) error {
	if err := validateQuantity(rel.Quantity, rel.Units); err != nil {
		return err
	}

	s.subRecipeMu.Lock()
	defer s.subRecipeMu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSubRecipeRelations(tx); err != nil {
			return err
		}
		if err := requireRecipe(tx, rel.ParentRecipeID); err != nil {
			return err
		}
		var child models.Recipe
		if err := tx.First(&child, rel.ChildRecipeID).Error; err != nil {
			return fmt.Errorf("recipe %d: %w", rel.ChildRecipeID, err)
		}
		if !units.AreCompatible(rel.Units, child.Units) {
			return fmt.Errorf("%w: %s cannot measure %s (%s)", ErrIncompatibleUnits, rel.Units, child.Title, child.Units)
		}

		var edges []models.SubRecipeRelation
		if err := tx.Find(&edges).Error; err != nil {
			return fmt.Errorf("load sub-recipe relations: %w", err)
		}
		graph := costing.NewSnapshot(nil, nil, nil, edges)
		if costing.WouldCreateCycleExcluding(graph, rel.ParentRecipeID, rel.ChildRecipeID, rel.ID) {
			applog.Info(ctx, "sub-recipe relation rejected",
				"parentRecipeID", rel.ParentRecipeID,
				"childRecipeID", rel.ChildRecipeID,
				"relationID", rel.ID,
			)
			return fmt.Errorf("%w: recipe %d cannot contain recipe %d", costing.ErrCycleDetected, rel.ParentRecipeID, rel.ChildRecipeID)
		}

		if rel.ID == 0 {
			return tx.Create(rel).Error
		}
		return updateRelation(tx, &models.SubRecipeRelation{}, rel.ID, map[string]any{
			"parent_recipe_id": rel.ParentRecipeID,
			"child_recipe_id":  rel.ChildRecipeID,
			"quantity":         rel.Quantity,
			"units":            rel.Units,
		})
	})
}

// DeleteSubRecipeRelation detaches a sub-recipe from its parent.
func (s *Store) DeleteSubRecipeRelation(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.SubRecipeRelation{}, id).Error
}

func updateRelation(tx *gorm.DB, model any, id uint, updates map[string]any) error {
	result := tx.Model(model).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func requireRecipe(tx *gorm.DB, id uint) error {
	var recipe models.Recipe
	if err := tx.Select("id").First(&recipe, id).Error; err != nil {
		return fmt.Errorf("recipe %d: %w", id, err)
	}
	return nil
}

// lockSubRecipeRelations blocks concurrent sub-recipe writers from other processes until
// the transaction ends. SQLite already allows a single writer.
func lockSubRecipeRelations(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("LOCK TABLE sub_recipe_relations IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
		return fmt.Errorf("lock sub-recipe relations: %w", err)
	}
	return nil
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func validateIngredient(ingredient *models.Ingredient) error {
	ingredient.Title = strings.TrimSpace(ingredient.Title)
	if ingredient.Title == "" {
		return ErrTitleRequired
	}
	if !ingredient.BaseUnits.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownUnit, ingredient.BaseUnits)
	}
	if ingredient.UnitCost < 0 || !finite(ingredient.UnitCost) {
		return ErrInvalidUnitCost
	}
	return nil
}

func validateRecipe(recipe *models.Recipe) error {
	recipe.Title = strings.TrimSpace(recipe.Title)
	if recipe.Title == "" {
		return ErrTitleRequired
	}
	if recipe.Produces <= 0 || !finite(recipe.Produces) {
		return ErrInvalidProduces
	}
	if !recipe.Units.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownUnit, recipe.Units)
	}
	recipe.Status = models.NormalizeRecipeStatus(string(recipe.Status))
	return nil
}

func validateQuantity(quantity float64, unit units.Unit) error {
	if quantity < 0 || !finite(quantity) {
		return ErrInvalidQuantity
	}
	if !unit.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return nil
}
