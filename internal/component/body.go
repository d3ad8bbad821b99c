package component

import "github.com/marblerace/course/internal/physics"

// Body links an entity to its rigid body. CleanupSystem removes the body
// when the entity is destroyed.
type Body struct {
	Handle physics.BodyHandle
}
