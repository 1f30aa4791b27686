package costing

// WouldCreateCycle reports whether adding the sub-recipe edge parentID -> childID would
// close a loop: either the ids are equal or parentID is already reachable from childID.
// Only sub-recipe relations are followed.
func WouldCreateCycle(g Graph, parentID, childID uint) bool {
	return WouldCreateCycleExcluding(g, parentID, childID, 0)
}

// WouldCreateCycleExcluding is WouldCreateCycle with the relation ignoreRelationID left
// out of the walk. Use it when repointing an existing relation, whose current edge is
// about to be replaced. A zero id ignores nothing.
func WouldCreateCycleExcluding(g Graph, parentID, childID, ignoreRelationID uint) bool {
	if parentID == childID {
		return true
	}

	visited := map[uint]bool{childID: true}
	stack := []uint{childID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, rel := range g.SubRecipeRelations(current) {
			if ignoreRelationID != 0 && rel.ID == ignoreRelationID {
				continue
			}
			next := rel.ChildRecipeID
			if next == parentID {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
