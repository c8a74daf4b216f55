package catalog

import (
	"fmt"
	"slices"
)

// ResolveOrder sorts the given workflows into execution order. Only
// dependency edges with both endpoints in the input set apply; ties break
// by ascending identifier, so equal inputs always produce equal output.
// Duplicate identifiers collapse to one occurrence.
//
// Returns ErrCyclicDependency only when the catalog itself is misconfigured,
// which Validate rules out at startup.
func ResolveOrder(ids []WorkflowID) ([]WorkflowID, error) {
	return resolve(ids)
}

func resolve(ids []WorkflowID) ([]WorkflowID, error) {
	subset := make(map[WorkflowID]bool, len(ids))
	for _, id := range ids {
		subset[id] = true
	}

	// In-degree counts restricted to the subset.
	pending := make(map[WorkflowID]int, len(subset))
	for id := range subset {
		count := 0
		if e, ok := entries[id]; ok {
			for _, dep := range e.DependsOn {
				if subset[dep] {
					count++
				}
			}
		}
		pending[id] = count
	}

	ready := readySet(pending, 0)
	ordered := make([]WorkflowID, 0, len(subset))

	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)

		for id := range subset {
			if pending[id] <= 0 {
				continue
			}
			if dependsOn(id, next, subset) {
				pending[id]--
				if pending[id] == 0 {
					ready = insertSorted(ready, id)
				}
			}
		}
	}

	if len(ordered) != len(subset) {
		return nil, fmt.Errorf("%w: unresolved %d of %d workflows",
			ErrCyclicDependency, len(subset)-len(ordered), len(subset))
	}

	return ordered, nil
}

func dependsOn(id, dep WorkflowID, subset map[WorkflowID]bool) bool {
	e, ok := entries[id]
	if !ok {
		return false
	}
	for _, d := range e.DependsOn {
		if d == dep && subset[d] {
			return true
		}
	}
	return false
}

func readySet(pending map[WorkflowID]int, degree int) []WorkflowID {
	var ready []WorkflowID
	for id, count := range pending {
		if count == degree {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)
	return ready
}

func insertSorted(ids []WorkflowID, id WorkflowID) []WorkflowID {
	i, _ := slices.BinarySearch(ids, id)
	return slices.Insert(ids, i, id)
}
