package component

import "github.com/marblerace/course/internal/level"

// Collider tags static course geometry.
type Collider struct {
	Part  Part
	Slot  int
	Shape level.Box
}

// Part names the piece of the course a static collider belongs to.
type Part int

const (
	PartFloor Part = iota
	PartWall
	PartTrophy
)

func (p Part) String() string {
	switch p {
	case PartFloor:
		return "floor"
	case PartWall:
		return "wall"
	case PartTrophy:
		return "trophy"
	}
	return "unknown"
}
