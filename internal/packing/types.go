package packing

import (
	"fmt"
	"strings"

	"github.com/eugenenazirov/load-planner/internal/geometry"
)

// OrderMode selects the order in which items are offered to the containers.
type OrderMode string

const (
	// OrderBiggerFirst places items by descending volume. Items of equal
	// volume keep their input order.
	OrderBiggerFirst OrderMode = "bigger_first"
	// OrderInput places items in the order they were supplied.
	OrderInput OrderMode = "input_order"
)

// DefaultDecimalPrecision is the number of fractional digits kept when
// comparing dimensions, coordinates and weights.
const DefaultDecimalPrecision = 3

// MaxDecimalPrecision is the largest supported precision. Beyond it the
// grid units of ordinary sizes no longer fit in a float64 mantissa.
const MaxDecimalPrecision = 9

// ParseOrderMode converts a configuration string into an OrderMode.
func ParseOrderMode(raw string) (OrderMode, error) {
	switch mode := OrderMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case OrderBiggerFirst, OrderInput:
		return mode, nil
	case "":
		return OrderBiggerFirst, nil
	default:
		return "", fmt.Errorf("%w: unknown order mode %q", ErrInvalidOptions, raw)
	}
}

// Item is a box waiting to be loaded.
type Item struct {
	ID        string
	Dimension geometry.Dimension
	Weight    float64
	// Rotations restricts the allowed orientations. Empty allows all six.
	Rotations []geometry.Rotation
}

// Volume returns the item's volume.
func (i Item) Volume() float64 {
	return i.Dimension.Volume()
}

// Container is a loading space with a weight limit.
type Container struct {
	ID        string
	Dimension geometry.Dimension
	MaxWeight float64
}

// Placement records where an item ended up. Position is the item's lower
// corner in the container frame; Dimension is the item's extent after
// Rotation is applied.
type Placement struct {
	ItemID      string
	ContainerID string
	Position    geometry.Point
	Rotation    geometry.Rotation
	Dimension   geometry.Dimension
	Weight      float64
}

// Box returns the space occupied by the placement.
func (p Placement) Box() geometry.Box {
	return geometry.Box{Position: p.Position, Size: p.Dimension}
}

// Options tunes a packing run.
type Options struct {
	Order OrderMode
	// Distribute spreads consecutive items across containers round-robin
	// instead of filling the first container before moving on.
	Distribute       bool
	DecimalPrecision int
	// Workers bounds how many containers are evaluated concurrently for a
	// single item. Values below 2 evaluate sequentially.
	Workers int
}

// DefaultOptions returns bigger-first ordering, no distribution and three
// decimals of precision.
func DefaultOptions() Options {
	return Options{
		Order:            OrderBiggerFirst,
		DecimalPrecision: DefaultDecimalPrecision,
		Workers:          1,
	}
}

// Validate checks that the options are usable.
func (o Options) Validate() error {
	switch o.Order {
	case OrderBiggerFirst, OrderInput:
	default:
		return fmt.Errorf("%w: unknown order mode %q", ErrInvalidOptions, o.Order)
	}
	if o.DecimalPrecision < 0 || o.DecimalPrecision > MaxDecimalPrecision {
		return fmt.Errorf("%w: decimal precision must be between 0 and %d, got %d",
			ErrInvalidOptions, MaxDecimalPrecision, o.DecimalPrecision)
	}
	return nil
}
