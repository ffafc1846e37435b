// Package raycast renders a first-person view of a grid map by marching one ray per column
package raycast

import (
	"math"

	"github.com/lixenwraith/diffused-rays/grid"
)

// Side identifies which grid line a ray crossed last
type Side uint8

const (
	SideNS Side = iota // Crossed a vertical grid line (x step)
	SideEW             // Crossed a horizontal grid line (y step), drawn darker
)

// String implements fmt.Stringer
func (s Side) String() string {
	if s == SideEW {
		return "EW"
	}
	return "NS"
}

// MinDist is the lower clamp for perpendicular distance
const MinDist = 0.001

// Hit is the per-column result of a cast, valid for one frame
type Hit struct {
	MapX, MapY int
	Side       Side
	WallType   int
	PerpDist   float64 // Camera plane distance, clamped to [MinDist, maxDepth]
	WallU      float64 // Fractional position along the wall face, [0, 1)
}

// RayAngle maps a screen column onto a ray angle
// Column 0 looks half a field of view to the left, column width to the right
func RayAngle(pose grid.Pose, column, width int, fov float64) float64 {
	cameraX := 2*float64(column)/float64(width) - 1
	return pose.Angle + cameraX*(fov/2)
}

// CastRay walks the grid from pose along angle with DDA until a non-empty cell
// Termination relies on grid.Map reporting a wall outside its bounds
func CastRay(m *grid.Map, pose grid.Pose, angle, maxDepth float64) Hit {
	dirX := math.Cos(angle)
	dirY := math.Sin(angle)

	mapX := int(math.Floor(pose.X))
	mapY := int(math.Floor(pose.Y))

	// Ray length between successive grid lines on each axis
	deltaX := math.Inf(1)
	if dirX != 0 {
		deltaX = math.Abs(1 / dirX)
	}
	deltaY := math.Inf(1)
	if dirY != 0 {
		deltaY = math.Abs(1 / dirY)
	}

	var stepX, stepY int
	var sideDistX, sideDistY float64
	if dirX < 0 {
		stepX = -1
		sideDistX = (pose.X - float64(mapX)) * deltaX
	} else {
		stepX = 1
		sideDistX = (float64(mapX) + 1 - pose.X) * deltaX
	}
	if dirY < 0 {
		stepY = -1
		sideDistY = (pose.Y - float64(mapY)) * deltaY
	} else {
		stepY = 1
		sideDistY = (float64(mapY) + 1 - pose.Y) * deltaY
	}

	side := SideNS
	wallType := grid.Empty
	for wallType == grid.Empty {
		if sideDistX < sideDistY {
			sideDistX += deltaX
			mapX += stepX
			side = SideNS
		} else {
			sideDistY += deltaY
			mapY += stepY
			side = SideEW
		}
		wallType = m.Cell(mapX, mapY)
	}

	// Length along the ray to the crossed grid line, MaxDepth on a degenerate axis
	var rayLen, wallU float64
	if side == SideNS {
		rayLen = maxDepth
		if dirX != 0 {
			rayLen = (float64(mapX) - pose.X + float64(1-stepX)/2) / dirX
		}
		wallU = pose.Y + rayLen*dirY
	} else {
		rayLen = maxDepth
		if dirY != 0 {
			rayLen = (float64(mapY) - pose.Y + float64(1-stepY)/2) / dirY
		}
		wallU = pose.X + rayLen*dirX
	}
	wallU -= math.Floor(wallU)
	if wallU >= 1 {
		wallU = 0
	}

	// Project onto the facing direction to remove fisheye bulge
	perp := rayLen * math.Cos(angle-pose.Angle)

	return Hit{
		MapX:     mapX,
		MapY:     mapY,
		Side:     side,
		WallType: wallType,
		PerpDist: ClampDist(perp, maxDepth),
		WallU:    wallU,
	}
}

// ClampDist bounds a distance to [MinDist, maxDepth]; NaN maps to maxDepth
func ClampDist(d, maxDepth float64) float64 {
	if math.IsNaN(d) || d > maxDepth {
		return maxDepth
	}
	if d < MinDist {
		return MinDist
	}
	return d
}

// ProjectWallHeight is the inverse distance projection law: screenHeight / perpDist
func ProjectWallHeight(screenHeight int, perpDist float64) float64 {
	return float64(screenHeight) / perpDist
}

// DrawSpan returns the inclusive row range for a wall column, clipped to the screen
func DrawSpan(screenHeight int, perpDist float64) (start, end int) {
	wallHeight := int(ProjectWallHeight(screenHeight, perpDist))
	mid := screenHeight / 2
	start = max(0, mid-wallHeight/2)
	end = min(screenHeight-1, mid+wallHeight/2)
	return start, end
}
