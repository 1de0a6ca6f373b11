package packing

import (
	"context"
	"sort"
	"sync"

	"github.com/eugenenazirov/load-planner/internal/geometry"
)

// ctxCheckEvery bounds how many candidate points are scanned between
// context checks.
const ctxCheckEvery = 64

type preparedItem struct {
	item         Item
	weight       float64
	volume       float64
	orientations []geometry.Oriented
}

type placedBox struct {
	item     Item
	box      geometry.Box
	rotation geometry.Rotation
}

// bin is the mutable state of one container during a run. All geometry is
// held in grid units. Evaluations take the read lock; commits take the
// write lock.
type bin struct {
	mu sync.RWMutex

	container Container
	size      geometry.Dimension
	maxWeight float64
	weight    float64
	placed    []placedBox
	points    []geometry.Point
}

func newBin(c Container, size geometry.Dimension, maxWeight float64) *bin {
	return &bin{
		container: c,
		size:      size,
		maxWeight: maxWeight,
		points:    []geometry.Point{{}},
	}
}

type candidate struct {
	position geometry.Point
	oriented geometry.Oriented
}

// evaluate finds the lowest (z, y, x) extreme point at which the item fits
// without exceeding the weight limit. It does not modify the bin.
func (b *bin) evaluate(ctx context.Context, it preparedItem) (candidate, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.weight+it.weight > b.maxWeight {
		return candidate{}, false, nil
	}

	bounds := geometry.Box{Size: b.size}
	for i, p := range b.points {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return candidate{}, false, err
			}
		}
		free := geometry.Dimension{
			Length: b.size.Length - p.X,
			Width:  b.size.Width - p.Y,
			Height: b.size.Height - p.Z,
		}
		for _, o := range it.orientations {
			if !geometry.FitsWithin(o.Dimension, free) {
				continue
			}
			box := geometry.Box{Position: p, Size: o.Dimension}
			if !geometry.Contains(bounds, box) || b.collides(box) {
				continue
			}
			return candidate{position: p, oriented: o}, true, nil
		}
	}
	return candidate{}, false, nil
}

func (b *bin) collides(box geometry.Box) bool {
	for _, pb := range b.placed {
		if geometry.Overlaps(pb.box, box) {
			return true
		}
	}
	return false
}

// commit records the placement and refreshes the extreme points.
func (b *bin) commit(it preparedItem, c candidate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	box := geometry.Box{Position: c.position, Size: c.oriented.Dimension}
	b.placed = append(b.placed, placedBox{item: it.item, box: box, rotation: c.oriented.Rotation})
	b.weight += it.weight

	far := box.Max()
	next := make([]geometry.Point, 0, len(b.points)+3)
	for _, p := range b.points {
		if p != c.position && !occupies(box, p) {
			next = append(next, p)
		}
	}
	for _, p := range []geometry.Point{
		{X: far.X, Y: c.position.Y, Z: c.position.Z},
		{X: c.position.X, Y: far.Y, Z: c.position.Z},
		{X: c.position.X, Y: c.position.Y, Z: far.Z},
	} {
		if b.usable(p) && !containsPoint(next, p) {
			next = append(next, p)
		}
	}
	sort.Slice(next, func(i, j int) bool {
		return next[i].Less(next[j])
	})
	b.points = next
}

// usable reports whether p lies strictly inside the container's far walls
// and outside every placed box.
func (b *bin) usable(p geometry.Point) bool {
	if p.X >= b.size.Length || p.Y >= b.size.Width || p.Z >= b.size.Height {
		return false
	}
	for _, pb := range b.placed {
		if occupies(pb.box, p) {
			return false
		}
	}
	return true
}

// occupies reports whether any box anchored at p would intersect box.
func occupies(box geometry.Box, p geometry.Point) bool {
	far := box.Max()
	return p.X >= box.Position.X && p.X < far.X &&
		p.Y >= box.Position.Y && p.Y < far.Y &&
		p.Z >= box.Position.Z && p.Z < far.Z
}

func containsPoint(points []geometry.Point, p geometry.Point) bool {
	for _, q := range points {
		if q == p {
			return true
		}
	}
	return false
}

// snapshot converts the bin back to caller units.
func (b *bin) snapshot(u units) ContainerState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	placements := make([]Placement, len(b.placed))
	for i, pb := range b.placed {
		placements[i] = Placement{
			ItemID:      pb.item.ID,
			ContainerID: b.container.ID,
			Position:    u.fromPoint(pb.box.Position),
			Rotation:    pb.rotation,
			Dimension:   u.fromDim(pb.box.Size),
			Weight:      pb.item.Weight,
		}
	}
	return ContainerState{
		Container:  b.container,
		Placements: placements,
		Weight:     u.from(b.weight),
	}
}
