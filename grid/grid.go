// Package grid holds the immutable tile map and the player pose that moves across it
package grid

import (
	"bufio"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// OutOfBounds is the wall type reported for any cell outside the map
// Rays leaving the authored area always terminate on it
const OutOfBounds = 1

// Empty marks a walkable cell
const Empty = 0

// Map is an immutable 2D grid of wall type ids, 0 = empty, 1..N = wall type
type Map struct {
	cells  []int
	width  int
	height int
}

// New copies rows into a map; rows shorter than the first row are padded with empty cells
func New(rows [][]int) *Map {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}

	m := &Map{
		cells:  make([]int, w*h),
		width:  w,
		height: h,
	}
	for y, row := range rows {
		copy(m.cells[y*w:(y+1)*w], row)
	}
	return m
}

// Width returns the number of columns
func (m *Map) Width() int { return m.width }

// Height returns the number of rows
func (m *Map) Height() int { return m.height }

// Cell returns the wall type at (x, y), OutOfBounds outside [0,w)x[0,h)
func (m *Map) Cell(x, y int) int {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return OutOfBounds
	}
	return m.cells[y*m.width+x]
}

// IsWall reports whether world position (x, y) lies inside a non-empty cell
func (m *Map) IsWall(x, y float64) bool {
	return m.Cell(int(math.Floor(x)), int(math.Floor(y))) != Empty
}

// Room builds an enclosed w x h room: a one cell thick border of wallType around empty floor
func Room(w, h, wallType int) *Map {
	rows := make([][]int, h)
	for y := range rows {
		rows[y] = make([]int, w)
		for x := range rows[y] {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				rows[y][x] = wallType
			}
		}
	}
	return New(rows)
}

// Parse reads a text map, one row per line
// Digits are wall types ('0' empty), '.' and ' ' are empty, '#' is wall type 1
// Blank lines and lines starting with ';' are skipped
func Parse(text string) (*Map, error) {
	var rows [][]int
	width := -1

	sc := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(raw) == "" || strings.HasPrefix(raw, ";") {
			continue
		}

		row := make([]int, 0, len(raw))
		for col, r := range raw {
			switch {
			case r >= '0' && r <= '9':
				row = append(row, int(r-'0'))
			case r == '.' || r == ' ':
				row = append(row, Empty)
			case r == '#':
				row = append(row, 1)
			default:
				return nil, errors.Errorf("map line %d col %d: unexpected %q", line, col+1, r)
			}
		}

		if width < 0 {
			width = len(row)
		} else if len(row) != width {
			return nil, errors.Errorf("map line %d: width %d, expected %d", line, len(row), width)
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read map")
	}
	if len(rows) == 0 {
		return nil, errors.New("map is empty")
	}
	return New(rows), nil
}
