package geom

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidRegion = errors.New("region points must share a world")

// BlockPos is an integer block coordinate in a named world.
type BlockPos struct {
	World string `json:"world" yaml:"world"`
	X     int    `json:"x" yaml:"x"`
	Y     int    `json:"y" yaml:"y"`
	Z     int    `json:"z" yaml:"z"`
}

// Location is an entity position: fractional coordinates plus facing.
type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`
}

// Block returns the block the location falls in.
func (l Location) Block() BlockPos {
	return BlockPos{
		World: l.World,
		X:     int(math.Floor(l.X)),
		Y:     int(math.Floor(l.Y)),
		Z:     int(math.Floor(l.Z)),
	}
}

type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Region is an axis-aligned box of blocks, inclusive on both corners.
// Min is component-wise less than or equal to Max.
type Region struct {
	World string `json:"world"`
	Min   Vec3   `json:"min"`
	Max   Vec3   `json:"max"`
}

// NewRegion builds the box spanned by two arbitrary corner blocks.
func NewRegion(a, b BlockPos) (Region, error) {
	if a.World != b.World {
		return Region{}, fmt.Errorf("%w: %q and %q", ErrInvalidRegion, a.World, b.World)
	}
	return Region{
		World: a.World,
		Min:   Vec3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max:   Vec3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}, nil
}

func (r Region) Contains(p BlockPos) bool {
	return p.World == r.World &&
		p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y &&
		p.Z >= r.Min.Z && p.Z <= r.Max.Z
}

// ContainsLocation reports whether the block under l is inside the region.
func (r Region) ContainsLocation(l Location) bool {
	return r.Contains(l.Block())
}

func (r Region) String() string {
	return fmt.Sprintf("%s[(%d,%d,%d)-(%d,%d,%d)]", r.World,
		r.Min.X, r.Min.Y, r.Min.Z, r.Max.X, r.Max.Y, r.Max.Z)
}
