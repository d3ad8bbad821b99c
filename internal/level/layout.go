package level

import "github.com/go-gl/mathgl/mgl32"

// DefaultSegmentLength is the Z length of one slot.
const DefaultSegmentLength = float32(4)

// SegmentRole distinguishes the platforms of a course.
type SegmentRole int

const (
	RoleStart SegmentRole = iota
	RoleObstacle
	RoleEnd
)

// Segment is one slot of the course.
type Segment struct {
	Slot     int
	Role     SegmentRole
	Kind     Kind // empty for start and end
	Position mgl32.Vec3
}

// Box is a static collider, given by center and half extents.
type Box struct {
	Center      mgl32.Vec3
	HalfExtents mgl32.Vec3
	Friction    float32
	Restitution float32
}

// Layout is the static geometry derived from a Level.
type Layout struct {
	Segments []Segment
	Walls    []Box // left, right, back
	Floor    Box
	Trophy   Box // fixed collider on the finish platform
	Finish   float32
}

// SlotZ returns the Z of the center of slot i.
func SlotZ(i int, segment float32) float32 {
	return -float32(i) * segment
}

// FinishLine is the Z the marble must pass to finish a course of count
// obstacles: the far edge of the end platform's near half.
func FinishLine(count int, segment float32) float32 {
	return -(float32(count)*segment + segment/2)
}

// BuildLayout places start, obstacle and end segments and the boundaries.
func BuildLayout(l *Level, segment float32) Layout {
	if segment <= 0 {
		segment = DefaultSegmentLength
	}
	count := len(l.Kinds)
	lay := Layout{
		Segments: make([]Segment, 0, count+2),
		Finish:   FinishLine(count, segment),
	}

	lay.Segments = append(lay.Segments, Segment{Slot: 0, Role: RoleStart})
	for i, k := range l.Kinds {
		lay.Segments = append(lay.Segments, Segment{
			Slot:     i + 1,
			Role:     RoleObstacle,
			Kind:     k,
			Position: mgl32.Vec3{0, 0, SlotZ(i+1, segment)},
		})
	}
	end := mgl32.Vec3{0, 0, SlotZ(count+1, segment)}
	lay.Segments = append(lay.Segments, Segment{Slot: count + 1, Role: RoleEnd, Position: end})

	length := float32(count + 2)
	half := segment / 2
	midZ := -(length * half) + half

	lay.Walls = []Box{
		{Center: mgl32.Vec3{2.15, 0.75, midZ}, HalfExtents: mgl32.Vec3{0.15, 0.75, length * half}, Restitution: 0.2},
		{Center: mgl32.Vec3{-2.15, 0.75, midZ}, HalfExtents: mgl32.Vec3{0.15, 0.75, length * half}, Restitution: 0.2},
		{Center: mgl32.Vec3{0, 0.75, -(length * segment) + half}, HalfExtents: mgl32.Vec3{half, 0.75, 0.15}, Restitution: 0.2},
	}
	lay.Floor = Box{
		Center:      mgl32.Vec3{0, -0.1, midZ},
		HalfExtents: mgl32.Vec3{half, 0.1, length * half},
		Friction:    1,
		Restitution: 0.2,
	}
	lay.Trophy = Box{
		Center:      end.Add(mgl32.Vec3{0, 0.25, 0}),
		HalfExtents: mgl32.Vec3{0.3, 0.25, 0.3},
		Restitution: 0.2,
	}
	return lay
}

// ObstacleSegments returns only the obstacle slots.
func (l Layout) ObstacleSegments() []Segment {
	out := make([]Segment, 0, len(l.Segments))
	for _, s := range l.Segments {
		if s.Role == RoleObstacle {
			out = append(out, s)
		}
	}
	return out
}
