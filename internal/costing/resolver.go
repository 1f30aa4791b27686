package costing

import (
	"context"
	"fmt"

	applog "costbook/internal/log"
	"costbook/internal/units"
	"costbook/models"
)

// CostResult is the outcome of one resolution. UnitCost is nil when the recipe's
// Produces is not positive. Unresolved lists every relation, anywhere in the resolved
// tree, that contributed nothing.
type CostResult struct {
	RecipeID   uint        `json:"recipeId" yaml:"recipeId"`
	Cost       float64     `json:"cost" yaml:"cost"`
	UnitCost   *float64    `json:"unitCost" yaml:"unitCost"`
	Unresolved []LineIssue `json:"unresolved" yaml:"unresolved"`
}

// Resolver computes recipe costs over a Graph. It holds no state between calls and may
// be used from several goroutines as long as the Graph is not mutated.
type Resolver struct {
	graph Graph
}

// NewResolver returns a Resolver reading from g.
func NewResolver(g Graph) *Resolver {
	return &Resolver{graph: g}
}

// Resolve computes the cost and unit cost of recipeID. Per-line problems are collected
// in the result; a loop in the sub-recipe graph aborts with an error matching
// ErrCycleDetected.
func (r *Resolver) Resolve(ctx context.Context, recipeID uint) (CostResult, error) {
	recipe, ok := r.graph.Recipe(recipeID)
	if !ok {
		return CostResult{}, fmt.Errorf("%w: %d", ErrRecipeNotFound, recipeID)
	}

	run := &resolution{
		ctx:    ctx,
		graph:  r.graph,
		cache:  make(map[uint]float64),
		active: make(map[uint]bool),
		issues: []LineIssue{},
	}

	cost, err := run.visit(recipe)
	if err != nil {
		applog.Error(ctx, "recipe resolution aborted", "recipeID", recipeID, "error", err)
		return CostResult{}, err
	}

	result := CostResult{
		RecipeID:   recipeID,
		Cost:       cost,
		Unresolved: run.issues,
	}
	if recipe.Produces > 0 {
		unitCost := cost / recipe.Produces
		result.UnitCost = &unitCost
	}

	applog.Debug(ctx, "recipe resolved",
		"recipeID", recipeID,
		"cost", cost,
		"visited", len(run.cache),
		"unresolved", len(run.issues),
	)
	return result, nil
}

// resolution is the state of a single top-level Resolve call. The cache lives exactly as
// long as the call.
type resolution struct {
	ctx    context.Context
	graph  Graph
	cache  map[uint]float64
	active map[uint]bool
	stack  []uint
	issues []LineIssue
}

func (s *resolution) visit(recipe models.Recipe) (float64, error) {
	id := recipe.ID
	if cost, ok := s.cache[id]; ok {
		return cost, nil
	}
	if s.active[id] {
		return 0, newCycleError(s.stack, id)
	}

	s.active[id] = true
	s.stack = append(s.stack, id)
	defer func() {
		delete(s.active, id)
		s.stack = s.stack[:len(s.stack)-1]
	}()

	total := 0.0

	for _, rel := range s.graph.IngredientRelations(id) {
		ingredient, ok := s.graph.Ingredient(rel.ChildIngredientID)
		if !ok {
			s.flag(id, rel.ID, KindIngredient, rel.ChildIngredientID, ReasonMissingEntity)
			continue
		}
		quantity, ok := units.Convert(rel.Quantity, rel.Units, ingredient.BaseUnits)
		if !ok {
			s.flag(id, rel.ID, KindIngredient, rel.ChildIngredientID, ReasonIncompatibleUnits)
			continue
		}
		total += quantity * ingredient.UnitCost
	}

	for _, rel := range s.graph.SubRecipeRelations(id) {
		child, ok := s.graph.Recipe(rel.ChildRecipeID)
		if !ok {
			s.flag(id, rel.ID, KindRecipe, rel.ChildRecipeID, ReasonMissingEntity)
			continue
		}
		childCost, err := s.visit(child)
		if err != nil {
			return 0, err
		}
		if child.Produces <= 0 {
			s.flag(id, rel.ID, KindRecipe, rel.ChildRecipeID, ReasonInvalidProduces)
			continue
		}
		quantity, ok := units.Convert(rel.Quantity, rel.Units, child.Units)
		if !ok {
			s.flag(id, rel.ID, KindRecipe, rel.ChildRecipeID, ReasonIncompatibleUnits)
			continue
		}
		total += quantity * (childCost / child.Produces)
	}

	s.cache[id] = total
	return total, nil
}

func (s *resolution) flag(parentID, relationID uint, kind ItemKind, childID uint, reason Reason) {
	issue := LineIssue{
		RelationID:     relationID,
		RelationType:   kind,
		ParentRecipeID: parentID,
		ChildID:        childID,
		Reason:         reason,
	}
	s.issues = append(s.issues, issue)

	if reason == ReasonMissingEntity {
		applog.Warn(s.ctx, "relation references a missing entity",
			"recipeID", parentID,
			"relationID", relationID,
			"childType", string(kind),
			"childID", childID,
		)
		return
	}
	applog.Debug(s.ctx, "relation unresolved",
		"recipeID", parentID,
		"relationID", relationID,
		"reason", string(reason),
	)
}
