package geometry

import (
	"fmt"
	"strings"
)

// Rotation names the axis permutation applied to an item's dimension. The
// letters give which original component lies along the x, y and z axes.
type Rotation int

const (
	RotationLWH Rotation = iota
	RotationWLH
	RotationWHL
	RotationHWL
	RotationHLW
	RotationLHW
)

// AllRotations lists every rotation in enumeration order.
var AllRotations = []Rotation{
	RotationLWH,
	RotationWLH,
	RotationWHL,
	RotationHWL,
	RotationHLW,
	RotationLHW,
}

var rotationNames = [...]string{"LWH", "WLH", "WHL", "HWL", "HLW", "LHW"}

func (r Rotation) Valid() bool {
	return r >= RotationLWH && r <= RotationLHW
}

func (r Rotation) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rotation(%d)", int(r))
	}
	return rotationNames[r]
}

// ParseRotation parses a rotation name such as "WLH" (case-insensitive).
func ParseRotation(s string) (Rotation, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range rotationNames {
		if n == name {
			return Rotation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rotation %q", s)
}

// Rotate returns d with its components permuted by r.
func Rotate(d Dimension, r Rotation) Dimension {
	l, w, h := d.Length, d.Width, d.Height
	switch r {
	case RotationWLH:
		return Dimension{Length: w, Width: l, Height: h}
	case RotationWHL:
		return Dimension{Length: w, Width: h, Height: l}
	case RotationHWL:
		return Dimension{Length: h, Width: w, Height: l}
	case RotationHLW:
		return Dimension{Length: h, Width: l, Height: w}
	case RotationLHW:
		return Dimension{Length: l, Width: h, Height: w}
	default:
		return d
	}
}

// Oriented pairs a rotation with the dimension it produces.
type Oriented struct {
	Rotation  Rotation
	Dimension Dimension
}

// Orientations returns the distinct axis permutations of d: one for a cube,
// three when exactly two components are equal, six otherwise.
func Orientations(d Dimension) []Dimension {
	oriented := OrientationsFor(d, nil)
	out := make([]Dimension, len(oriented))
	for i, o := range oriented {
		out[i] = o.Dimension
	}
	return out
}

// OrientationsFor returns the distinct orientations of d reachable through
// allowed, in the order given. A nil or empty allowed means AllRotations.
// When two rotations produce the same dimension only the first is kept.
func OrientationsFor(d Dimension, allowed []Rotation) []Oriented {
	if len(allowed) == 0 {
		allowed = AllRotations
	}
	out := make([]Oriented, 0, len(allowed))
	for _, r := range allowed {
		if !r.Valid() {
			continue
		}
		rotated := Rotate(d, r)
		if containsDimension(out, rotated) {
			continue
		}
		out = append(out, Oriented{Rotation: r, Dimension: rotated})
	}
	return out
}

func containsDimension(list []Oriented, d Dimension) bool {
	for _, o := range list {
		if o.Dimension == d {
			return true
		}
	}
	return false
}
