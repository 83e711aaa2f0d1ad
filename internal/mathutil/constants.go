package mathutil

import (
	"math"
	"strings"
)

// Named orientations for the shading tables of a frame. Screen space is
// x right, y down, z away from the viewer.
var (
	// ViewFront looks down -z with no rotation.
	ViewFront = Mat3Identity()

	// ViewTop tips the scene forward: Rx(-90°)
	ViewTop = RotX(math.Pi / -2)

	// ViewSide turns the scene a quarter turn: Ry(90°)
	ViewSide = RotY(math.Pi / 2)

	// ViewTilted is the default presentation angle: Rx(-15°) @ Ry(12°)
	ViewTilted = Mat3Mul(RotX(Deg2Rad(-15)), RotY(Deg2Rad(12)))
)

// ViewByName resolves a named orientation. Unknown names return ViewFront, false.
func ViewByName(name string) (Mat3, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "front":
		return ViewFront, true
	case "top":
		return ViewTop, true
	case "side":
		return ViewSide, true
	case "tilted":
		return ViewTilted, true
	}
	return ViewFront, false
}
