package grid

import (
	"math"
	"math/rand"
)

// MazeConfig shapes a generated dungeon
type MazeConfig struct {
	Width, Height int // Rounded down to odd, at least 5

	// Braid is the chance a dead end is opened into a loop: 0 keeps a perfect
	// maze, 1 removes every dead end that can go without opening a 2x2 hall
	Braid float64

	WallTypes int // Walls cycle through types 1..WallTypes by region, at least 1
	Region    int // Side of a same-coloured region in cells, at least 1
}

// DefaultMazeConfig returns a 21x21 dungeon with some loops and three wall colours
func DefaultMazeConfig() MazeConfig {
	return MazeConfig{Width: 21, Height: 21, Braid: 0.3, WallTypes: 3, Region: 6}
}

type cell struct{ x, y int }

var (
	steps2 = [4]cell{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}
	steps1 = [4]cell{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
)

// Maze carves a connected dungeon with a recursive backtracker and returns it with
// a spawn pose in the first corridor, facing along it
// Every floor cell is reachable from the spawn.
func Maze(cfg MazeConfig, rng *rand.Rand) (*Map, Pose) {
	w, h := oddAtLeast(cfg.Width), oddAtLeast(cfg.Height)
	wallTypes := max(cfg.WallTypes, 1)
	region := max(cfg.Region, 1)

	open := make([][]bool, h)
	for y := range open {
		open[y] = make([]bool, w)
	}
	carve(open, cell{1, 1}, rng)
	if cfg.Braid > 0 {
		braid(open, cfg.Braid, rng)
	}

	rows := make([][]int, h)
	for y := range rows {
		rows[y] = make([]int, w)
		for x := range rows[y] {
			if !open[y][x] {
				rows[y][x] = 1 + (x/region+y/region)%wallTypes
			}
		}
	}

	angle := 0.0
	if !open[1][2] {
		angle = math.Pi / 2
	}
	return New(rows), NewPose(1.5, 1.5, angle)
}

func oddAtLeast(n int) int {
	if n < 5 {
		n = 5
	}
	if n%2 == 0 {
		n--
	}
	return n
}

// carve opens rooms on odd coordinates and the walls between them, depth first
func carve(open [][]bool, start cell, rng *rand.Rand) {
	h, w := len(open), len(open[0])
	open[start.y][start.x] = true
	stack := []cell{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		var next [4]cell
		n := 0
		for _, d := range steps2 {
			c := cell{cur.x + d.x, cur.y + d.y}
			if c.x > 0 && c.x < w-1 && c.y > 0 && c.y < h-1 && !open[c.y][c.x] {
				next[n] = d
				n++
			}
		}
		if n == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		d := next[rng.Intn(n)]
		open[cur.y+d.y/2][cur.x+d.x/2] = true
		c := cell{cur.x + d.x, cur.y + d.y}
		open[c.y][c.x] = true
		stack = append(stack, c)
	}
}

// braid knocks through one wall of some dead ends, never opening a 2x2 hall
// or leaving a wall cell with no wall neighbour
func braid(open [][]bool, chance float64, rng *rand.Rand) {
	h, w := len(open), len(open[0])
	for y := 1; y < h-1; y += 2 {
		for x := 1; x < w-1; x += 2 {
			exits := 0
			for _, d := range steps1 {
				if open[y+d.y][x+d.x] {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= chance {
				continue
			}

			var walls [4]cell
			n := 0
			for _, d := range steps2 {
				nx, ny := x+d.x, y+d.y
				wx, wy := x+d.x/2, y+d.y/2
				if nx <= 0 || nx >= w-1 || ny <= 0 || ny >= h-1 {
					continue
				}
				if open[ny][nx] && !open[wy][wx] && safeToOpen(open, wx, wy) {
					walls[n] = cell{wx, wy}
					n++
				}
			}
			if n > 0 {
				c := walls[rng.Intn(n)]
				open[c.y][c.x] = true
			}
		}
	}
}

func safeToOpen(open [][]bool, x, y int) bool {
	h, w := len(open), len(open[0])
	isOpen := func(cx, cy int) bool {
		return cx >= 0 && cx < w && cy >= 0 && cy < h && open[cy][cx]
	}

	// Any 2x2 block containing (x, y) that would become all floor
	for _, q := range [4]cell{{-1, -1}, {0, -1}, {-1, 0}, {0, 0}} {
		all := true
		for _, o := range [4]cell{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
			cx, cy := x+q.x+o.x, y+q.y+o.y
			if (cx != x || cy != y) && !isOpen(cx, cy) {
				all = false
				break
			}
		}
		if all {
			return false
		}
	}

	// A neighbouring wall must keep another wall neighbour
	for _, d := range steps1 {
		nx, ny := x+d.x, y+d.y
		if nx < 0 || nx >= w || ny < 0 || ny >= h || open[ny][nx] {
			continue
		}
		linked := false
		for _, d2 := range steps1 {
			mx, my := nx+d2.x, ny+d2.y
			if mx == x && my == y {
				continue
			}
			if mx < 0 || mx >= w || my < 0 || my >= h || !open[my][mx] {
				linked = true
				break
			}
		}
		if !linked {
			return false
		}
	}
	return true
}
