package geometry

import "math"

// Dimension is the extent of an axis-aligned box along the length (x),
// width (y) and height (z) axes.
type Dimension struct {
	Length float64 `json:"length" yaml:"length"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Valid reports whether every component is strictly positive.
func (d Dimension) Valid() bool {
	return d.Length > 0 && d.Width > 0 && d.Height > 0
}

// Volume returns Length*Width*Height.
func (d Dimension) Volume() float64 {
	return d.Length * d.Width * d.Height
}

// Round rounds every component to the given number of fractional digits.
func (d Dimension) Round(decimals int) Dimension {
	return Dimension{
		Length: Round(d.Length, decimals),
		Width:  Round(d.Width, decimals),
		Height: Round(d.Height, decimals),
	}
}

// Point is a coordinate in a container's local frame. The origin is the
// container's lower-left-front corner.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Round rounds every coordinate to the given number of fractional digits.
func (p Point) Round(decimals int) Point {
	return Point{
		X: Round(p.X, decimals),
		Y: Round(p.Y, decimals),
		Z: Round(p.Z, decimals),
	}
}

// Less orders points by height first, then depth, then width: the
// floor-up, front-to-back, left-to-right fill order.
func (p Point) Less(o Point) bool {
	if p.Z != o.Z {
		return p.Z < o.Z
	}
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.X < o.X
}

// Box is an axis-aligned box anchored at its lower corner.
type Box struct {
	Position Point
	Size     Dimension
}

// Max returns the corner opposite to Position.
func (b Box) Max() Point {
	return Point{
		X: b.Position.X + b.Size.Length,
		Y: b.Position.Y + b.Size.Width,
		Z: b.Position.Z + b.Size.Height,
	}
}

// MaxAt returns the corner opposite to Position rounded to decimals. A box
// at 0.1 with length 0.2 ends at 0.3, not 0.30000000000000004.
func (b Box) MaxAt(decimals int) Point {
	return b.Max().Round(decimals)
}

// Round rounds the box's corner and extent to decimals.
func (b Box) Round(decimals int) Box {
	return Box{Position: b.Position.Round(decimals), Size: b.Size.Round(decimals)}
}

// FitsWithin reports whether item fits inside free on every axis.
func FitsWithin(item, free Dimension) bool {
	return item.Length <= free.Length &&
		item.Width <= free.Width &&
		item.Height <= free.Height
}

// Overlaps reports whether a and b share a region of positive volume.
// Boxes touching at a face, edge or corner do not overlap. Coordinates are
// compared exactly; use OverlapsAt for fractional values.
func Overlaps(a, b Box) bool {
	return overlaps(a.Position, a.Max(), b.Position, b.Max())
}

// OverlapsAt is Overlaps with corners and extents compared at the given
// number of fractional digits.
func OverlapsAt(a, b Box, decimals int) bool {
	return overlaps(a.Position.Round(decimals), a.MaxAt(decimals), b.Position.Round(decimals), b.MaxAt(decimals))
}

func overlaps(aMin, aMax, bMin, bMax Point) bool {
	return aMin.X < bMax.X && bMin.X < aMax.X &&
		aMin.Y < bMax.Y && bMin.Y < aMax.Y &&
		aMin.Z < bMax.Z && bMin.Z < aMax.Z
}

// Contains reports whether inner lies entirely within outer. Coordinates are
// compared exactly; use ContainsAt for fractional values.
func Contains(outer, inner Box) bool {
	return contains(outer.Position, outer.Max(), inner.Position, inner.Max())
}

// ContainsAt is Contains with corners and extents compared at the given
// number of fractional digits.
func ContainsAt(outer, inner Box, decimals int) bool {
	return contains(outer.Position.Round(decimals), outer.MaxAt(decimals), inner.Position.Round(decimals), inner.MaxAt(decimals))
}

func contains(oMin, oMax, iMin, iMax Point) bool {
	return iMin.X >= oMin.X && iMax.X <= oMax.X &&
		iMin.Y >= oMin.Y && iMax.Y <= oMax.Y &&
		iMin.Z >= oMin.Z && iMax.Z <= oMax.Z
}

// Round rounds v half away from zero to the given number of fractional
// digits. Negative decimals are treated as zero.
func Round(v float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}
