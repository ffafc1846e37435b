package grid

import (
	"math"
)

// CollisionMargin is the half-extent of the player's bounding box
const CollisionMargin = 0.2

const twoPi = 2 * math.Pi

// Pose is the camera position in world units and its facing angle
// Angle is radians, 0 faces +X, kept in [0, 2π)
type Pose struct {
	X, Y  float64
	Angle float64
}

// NewPose builds a pose with a normalized angle
func NewPose(x, y, angle float64) Pose {
	return Pose{X: x, Y: y, Angle: NormalizeAngle(angle)}
}

// NormalizeAngle wraps a into [0, 2π)
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	// Mod of a tiny negative value can round up to exactly 2π
	if a >= twoPi {
		a = 0
	}
	return a
}

// Dir returns the unit facing vector
func (p Pose) Dir() (float64, float64) {
	return math.Cos(p.Angle), math.Sin(p.Angle)
}

// MoveForward steps dist along the facing direction, sliding along walls
func (p *Pose) MoveForward(dist float64, m *Map) {
	dx, dy := p.Dir()
	p.tryMove(p.X+dx*dist, p.Y+dy*dist, m)
}

// MoveBackward steps dist against the facing direction, sliding along walls
func (p *Pose) MoveBackward(dist float64, m *Map) {
	dx, dy := p.Dir()
	p.tryMove(p.X-dx*dist, p.Y-dy*dist, m)
}

// TurnLeft rotates counter to the facing direction by a radians
func (p *Pose) TurnLeft(a float64) {
	p.Angle = NormalizeAngle(p.Angle - a)
}

// TurnRight rotates by a radians
func (p *Pose) TurnRight(a float64) {
	p.Angle = NormalizeAngle(p.Angle + a)
}

// tryMove applies the X then the Y component independently
// Each axis only commits when the centre and all four box corners are free
func (p *Pose) tryMove(nx, ny float64, m *Map) {
	if p.free(nx, p.Y, m) {
		p.X = nx
	}
	if p.free(p.X, ny, m) {
		p.Y = ny
	}
}

func (p *Pose) free(x, y float64, m *Map) bool {
	const c = CollisionMargin
	return !m.IsWall(x, y) &&
		!m.IsWall(x+c, y+c) &&
		!m.IsWall(x+c, y-c) &&
		!m.IsWall(x-c, y+c) &&
		!m.IsWall(x-c, y-c)
}
