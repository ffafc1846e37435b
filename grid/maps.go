package grid

import (
	"os"

	"github.com/pkg/errors"
)

// testMapRows is the 10x10 development maze: 1 red, 2 green, 3 blue walls
var testMapRows = [][]int{
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 0, 0, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 2, 2, 0, 3, 3, 0, 0, 1},
	{1, 0, 2, 0, 0, 0, 3, 0, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 2, 0, 0, 0, 3, 0, 0, 1},
	{1, 0, 2, 2, 0, 3, 3, 0, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 0, 0, 1},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
}

// TestMap returns the development maze and its start pose (centre, facing +X)
func TestMap() (*Map, Pose) {
	return New(testMapRows), NewPose(5.0, 5.0, 0.0)
}

// Load reads a text map from path; see Parse for the format
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load map")
	}
	m, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return m, nil
}

// Spawn returns a pose at the centre of the empty cell nearest the map centre, facing +X
// Ties go to the lowest row, then the lowest column
func Spawn(m *Map) (Pose, error) {
	cx, cy := float64(m.Width())/2, float64(m.Height())/2
	best := -1.0
	var pose Pose
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Cell(x, y) != Empty {
				continue
			}
			px, py := float64(x)+0.5, float64(y)+0.5
			d := (px-cx)*(px-cx) + (py-cy)*(py-cy)
			if best < 0 || d < best {
				best = d
				pose = NewPose(px, py, 0)
			}
		}
	}
	if best < 0 {
		return Pose{}, errors.New("map has no empty cell")
	}
	return pose, nil
}
