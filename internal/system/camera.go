package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/marblerace/course/internal/camera"
	coresys "github.com/marblerace/course/internal/core/system"
)

// CameraSystem smooths the chase camera toward the marble. Phase 5 (Camera).
type CameraSystem struct {
	follow *camera.Follow
	cam    camera.Camera // optional
	body   func() mgl32.Vec3
}

func NewCameraSystem(follow *camera.Follow, cam camera.Camera, body func() mgl32.Vec3) *CameraSystem {
	return &CameraSystem{follow: follow, cam: cam, body: body}
}

func (s *CameraSystem) Phase() coresys.Phase { return coresys.PhaseCamera }

func (s *CameraSystem) Update(dt time.Duration) {
	sec := float32(dt.Seconds())
	if s.cam != nil {
		s.follow.Apply(s.cam, s.body(), sec)
		return
	}
	s.follow.Update(s.body(), sec)
}
