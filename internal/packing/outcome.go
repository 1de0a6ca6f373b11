package packing

// ContainerState is a container together with what was loaded into it.
type ContainerState struct {
	Container Container
	// Placements are listed in the order they were committed.
	Placements []Placement
	Weight     float64
}

// Outcome is the final state of a packing run. Accessors return copies, so
// callers cannot alter the run through them.
type Outcome struct {
	containers []ContainerState
	unplaced   []Item
	decimals   int
}

// DecimalPrecision returns the number of fractional digits the run compared
// at. Placements should be checked with geometry.ContainsAt and
// geometry.OverlapsAt at this precision.
func (o *Outcome) DecimalPrecision() int {
	return o.decimals
}

// Containers returns every container in input order, including empty ones.
func (o *Outcome) Containers() []ContainerState {
	out := make([]ContainerState, len(o.containers))
	for i, c := range o.containers {
		c.Placements = append([]Placement(nil), c.Placements...)
		out[i] = c
	}
	return out
}

// Unplaced returns the items that fit in no container, in processing order.
func (o *Outcome) Unplaced() []Item {
	return append([]Item(nil), o.unplaced...)
}

// PlacedCount returns the number of items that were loaded.
func (o *Outcome) PlacedCount() int {
	n := 0
	for _, c := range o.containers {
		n += len(c.Placements)
	}
	return n
}
