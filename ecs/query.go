package ecs

import "github.com/milk9111/orbitfolio/ecs/component"

// intersect returns the entities present in every set, iterating the smallest one.
func intersect(sets []*SparseSet) []Entity {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	if smallest.Len() == 0 {
		return nil
	}

	out := make([]Entity, 0, smallest.Len())
next:
	for _, e := range smallest.Entities() {
		for _, s := range sets {
			if !s.Has(e) {
				continue next
			}
		}
		out = append(out, e)
	}
	return out
}

// Query returns the live entities that carry every listed component id.
func (w *World) Query(ids ...component.ComponentID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(ids))
	for _, id := range ids {
		s, ok := w.stores[id]
		if !ok {
			return nil
		}
		sets = append(sets, s)
	}
	return intersect(sets)
}

// First returns the first live entity carrying the component id.
func (w *World) First(id component.ComponentID) (Entity, bool) {
	if w == nil {
		return 0, false
	}
	s, ok := w.stores[id]
	if !ok || s.Len() == 0 {
		return 0, false
	}
	return s.Entities()[0], true
}
