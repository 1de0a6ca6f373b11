package packing

import (
	"fmt"
	"math"

	"github.com/eugenenazirov/load-planner/internal/geometry"
)

// units converts between caller values and the integral grid the engine
// compares on. With a precision of d digits one unit is 10^-d, so every
// coordinate is an integer-valued float64 and sums stay exact.
type units struct {
	decimals int
	scale    float64
}

func newUnits(decimals int) units {
	return units{decimals: decimals, scale: math.Pow10(decimals)}
}

func (u units) to(v float64) float64 {
	return math.Round(v * u.scale)
}

func (u units) from(v float64) float64 {
	return geometry.Round(v/u.scale, u.decimals)
}

func (u units) toDim(d geometry.Dimension) geometry.Dimension {
	return geometry.Dimension{Length: u.to(d.Length), Width: u.to(d.Width), Height: u.to(d.Height)}
}

func (u units) fromDim(d geometry.Dimension) geometry.Dimension {
	return geometry.Dimension{Length: u.from(d.Length), Width: u.from(d.Width), Height: u.from(d.Height)}
}

func (u units) fromPoint(p geometry.Point) geometry.Point {
	return geometry.Point{X: u.from(p.X), Y: u.from(p.Y), Z: u.from(p.Z)}
}

// maxGridUnits is the largest grid value whose sums stay exact.
const maxGridUnits = 1 << 53

// dimension validates d and converts it to grid units.
func (u units) dimension(d geometry.Dimension) (geometry.Dimension, error) {
	for _, v := range []float64{d.Length, d.Width, d.Height} {
		if math.IsNaN(v) || v <= 0 {
			return geometry.Dimension{}, fmt.Errorf("%w: got %gx%gx%g", ErrInvalidDimension, d.Length, d.Width, d.Height)
		}
		if math.IsInf(v, 0) || u.to(v) > maxGridUnits {
			return geometry.Dimension{}, fmt.Errorf("%w: %g is too large at %d decimals", ErrValueOutOfRange, v, u.decimals)
		}
	}
	size := u.toDim(d)
	if !size.Valid() {
		return geometry.Dimension{}, fmt.Errorf("%w: got %gx%gx%g, which rounds to zero at %d decimals",
			ErrInvalidDimension, d.Length, d.Width, d.Height, u.decimals)
	}
	return size, nil
}

// weight validates w and converts it to grid units. label names the value
// in errors.
func (u units) weight(label string, w float64) (float64, error) {
	if math.IsNaN(w) || w < 0 {
		return 0, fmt.Errorf("%w: %s %g", ErrInvalidCapacity, label, w)
	}
	if math.IsInf(w, 0) || u.to(w) > maxGridUnits {
		return 0, fmt.Errorf("%w: %s %g is too large at %d decimals", ErrValueOutOfRange, label, w, u.decimals)
	}
	return u.to(w), nil
}

// prepareContainers validates containers and converts them to grid units.
// Nothing is returned unless every container is valid.
func prepareContainers(containers []Container, u units) ([]*bin, error) {
	if len(containers) == 0 {
		return nil, ErrEmptyContainerSet
	}

	seen := make(map[string]struct{}, len(containers))
	bins := make([]*bin, 0, len(containers))
	for _, c := range containers {
		if c.ID == "" {
			return nil, containerError(c.ID, ErrMissingID)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, containerError(c.ID, ErrDuplicateID)
		}
		seen[c.ID] = struct{}{}

		size, err := u.dimension(c.Dimension)
		if err != nil {
			return nil, containerError(c.ID, err)
		}
		maxWeight, err := u.weight("capacity", c.MaxWeight)
		if err != nil {
			return nil, containerError(c.ID, err)
		}

		normalized := Container{
			ID:        c.ID,
			Dimension: c.Dimension.Round(u.decimals),
			MaxWeight: geometry.Round(c.MaxWeight, u.decimals),
		}
		bins = append(bins, newBin(normalized, size, maxWeight))
	}
	return bins, nil
}

// prepareItems validates items, converts them to grid units and computes
// their distinct orientations.
func prepareItems(items []Item, u units) ([]preparedItem, error) {
	seen := make(map[string]struct{}, len(items))
	prepared := make([]preparedItem, 0, len(items))
	for idx, it := range items {
		if it.ID == "" {
			return nil, itemError(fmt.Sprintf("#%d", idx), ErrMissingID)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, itemError(it.ID, ErrDuplicateID)
		}
		seen[it.ID] = struct{}{}

		size, err := u.dimension(it.Dimension)
		if err != nil {
			return nil, itemError(it.ID, err)
		}
		weight, err := u.weight("weight", it.Weight)
		if err != nil {
			return nil, itemError(it.ID, err)
		}
		for _, r := range it.Rotations {
			if !r.Valid() {
				return nil, itemError(it.ID, fmt.Errorf("%w: %s", ErrInvalidRotation, r))
			}
		}

		normalized := it
		normalized.Dimension = it.Dimension.Round(u.decimals)
		normalized.Weight = geometry.Round(it.Weight, u.decimals)
		normalized.Rotations = append([]geometry.Rotation(nil), it.Rotations...)

		prepared = append(prepared, preparedItem{
			item:         normalized,
			weight:       weight,
			volume:       size.Volume(),
			orientations: geometry.OrientationsFor(size, it.Rotations),
		})
	}
	return prepared, nil
}
