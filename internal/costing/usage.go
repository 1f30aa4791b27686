package costing

import (
	"sort"
	"strings"
)

// RecipeRef identifies a recipe in listings.
type RecipeRef struct {
	ID    uint   `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// UsedIn lists the recipes holding a direct relation to the given ingredient or recipe.
// Recipes reaching the item only through a sub-recipe are not listed. Results are
// sorted by title, ignoring case, then by id.
func UsedIn(g Graph, itemID uint, kind ItemKind) []RecipeRef {
	edges := g.RelationsByChild(itemID, kind)
	seen := make(map[uint]bool, len(edges))
	refs := make([]RecipeRef, 0, len(edges))
	for _, edge := range edges {
		if seen[edge.ParentRecipeID] {
			continue
		}
		seen[edge.ParentRecipeID] = true

		parent, ok := g.Recipe(edge.ParentRecipeID)
		if !ok {
			continue
		}
		refs = append(refs, RecipeRef{ID: parent.ID, Title: parent.Title})
	}

	sort.Slice(refs, func(i, j int) bool {
		a, b := strings.ToLower(refs[i].Title), strings.ToLower(refs[j].Title)
		if a != b {
			return a < b
		}
		if refs[i].Title != refs[j].Title {
			return refs[i].Title < refs[j].Title
		}
		return refs[i].ID < refs[j].ID
	})
	return refs
}
