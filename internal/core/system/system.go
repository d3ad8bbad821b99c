package system

import "time"

// Phase defines execution ordering within a single frame tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: sample the input source
	PhasePreUpdate              // 1: dispatch last tick's events
	PhasePhysics                // 2: advance the physics world with last tick's forces/targets
	PhaseObstacles              // 3: push next kinematic targets
	PhaseControl                // 4: player impulses, win/fail checks
	PhaseCamera                 // 5: camera smoothing
	PhasePersist                // 6: flush finished runs
	PhaseCleanup                // 7: rebuild the course, destroy queued entities

	phaseCount = int(PhaseCleanup) + 1
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre_update"
	case PhasePhysics:
		return "physics"
	case PhaseObstacles:
		return "obstacles"
	case PhaseControl:
		return "control"
	case PhaseCamera:
		return "camera"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
