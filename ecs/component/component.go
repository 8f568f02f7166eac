// Package component defines the data attached to scene entities. Each type is
// declared once as a package-level handle, e.g. TransformComponent.
package component

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID keys one component store in a world. Zero is never assigned.
type ComponentID uint32

var lastComponentID atomic.Uint32

// ComponentHandle binds a Go type to the id of its store, so typed helpers in
// package ecs can read and write it without assertions at call sites.
type ComponentHandle[T any] struct {
	id ComponentID
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{id: ComponentID(lastComponentID.Add(1))}
}

func (h ComponentHandle[T]) ID() ComponentID {
	return h.id
}
