package costing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycleDetected reports a sub-recipe relation that closes a loop.
	ErrCycleDetected = errors.New("cycle detected")
	// ErrRecipeNotFound reports a resolution requested for an unknown recipe.
	ErrRecipeNotFound = errors.New("recipe not found")
)

// CycleError carries the recipe ids that form a loop, first and last id equal.
type CycleError struct {
	Path []uint
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Path))
	for _, id := range e.Path {
		parts = append(parts, fmt.Sprint(id))
	}
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(parts, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

func newCycleError(stack []uint, repeated uint) *CycleError {
	start := 0
	for i, id := range stack {
		if id == repeated {
			start = i
			break
		}
	}
	path := make([]uint, 0, len(stack)-start+1)
	path = append(path, stack[start:]...)
	path = append(path, repeated)
	return &CycleError{Path: path}
}

// Reason explains why a relation could not contribute to a cost.
type Reason string

const (
	ReasonIncompatibleUnits Reason = "incompatible_units"
	ReasonMissingEntity     Reason = "missing_entity"
	ReasonInvalidProduces   Reason = "invalid_produces"
)

// LineIssue is an unresolved relation. The relation contributes zero to its parent and
// the resolution carries on.
type LineIssue struct {
	RelationID     uint     `json:"relationId" yaml:"relationId"`
	RelationType   ItemKind `json:"relationType" yaml:"relationType"`
	ParentRecipeID uint     `json:"parentRecipeId" yaml:"parentRecipeId"`
	ChildID        uint     `json:"childId" yaml:"childId"`
	Reason         Reason   `json:"reason" yaml:"reason"`
}
