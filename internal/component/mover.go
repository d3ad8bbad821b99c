package component

import "github.com/marblerace/course/internal/obstacle"

// Mover marks a kinematic obstacle driven by a motion pattern.
// Pure data, zero methods: ObstacleSystem evaluates the pattern each tick.
type Mover struct {
	Instance *obstacle.Instance
}
