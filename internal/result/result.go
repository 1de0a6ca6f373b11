package result

import (
	"github.com/eugenenazirov/load-planner/internal/geometry"
	"github.com/eugenenazirov/load-planner/internal/packing"
)

// Placement is one row of the placement table.
type Placement struct {
	ItemID      string             `json:"itemId" yaml:"item_id"`
	ContainerID string             `json:"containerId" yaml:"container_id"`
	Position    geometry.Point     `json:"position" yaml:"position"`
	Dimension   geometry.Dimension `json:"dimension" yaml:"dimension"`
	Rotation    string             `json:"rotation" yaml:"rotation"`
	Weight      float64            `json:"weight" yaml:"weight"`
}

// ContainerSummary aggregates the load of one container.
type ContainerSummary struct {
	ContainerID  string  `json:"containerId" yaml:"container_id"`
	ItemCount    int     `json:"itemCount" yaml:"item_count"`
	UsedVolume   float64 `json:"usedVolume" yaml:"used_volume"`
	Volume       float64 `json:"volume" yaml:"volume"`
	Utilization  float64 `json:"utilization" yaml:"utilization"`
	TotalWeight  float64 `json:"totalWeight" yaml:"total_weight"`
	MaxWeight    float64 `json:"maxWeight" yaml:"max_weight"`
	WeightLoaded float64 `json:"weightLoaded" yaml:"weight_loaded"`
}

// Result is the caller-facing outcome of a packing run.
type Result struct {
	RunID      string             `json:"runId,omitempty" yaml:"run_id,omitempty"`
	Placements []Placement        `json:"placements" yaml:"placements"`
	Unplaced   []string           `json:"unplaced" yaml:"unplaced"`
	Containers []ContainerSummary `json:"containers" yaml:"containers"`
}

// Assemble flattens a packing outcome into a Result. Placements are grouped
// by container in input order and keep their commit order within a
// container. The outcome is only read.
func Assemble(outcome *packing.Outcome) Result {
	res := Result{
		Placements: []Placement{},
		Unplaced:   []string{},
		Containers: []ContainerSummary{},
	}
	if outcome == nil {
		return res
	}

	for _, state := range outcome.Containers() {
		summary := ContainerSummary{
			ContainerID: state.Container.ID,
			ItemCount:   len(state.Placements),
			Volume:      state.Container.Dimension.Volume(),
			TotalWeight: state.Weight,
			MaxWeight:   state.Container.MaxWeight,
		}
		for _, p := range state.Placements {
			summary.UsedVolume += p.Dimension.Volume()
			res.Placements = append(res.Placements, Placement{
				ItemID:      p.ItemID,
				ContainerID: p.ContainerID,
				Position:    p.Position,
				Dimension:   p.Dimension,
				Rotation:    p.Rotation.String(),
				Weight:      p.Weight,
			})
		}
		summary.UsedVolume = geometry.Round(summary.UsedVolume, 6)
		summary.Utilization = ratio(summary.UsedVolume, summary.Volume)
		summary.WeightLoaded = ratio(summary.TotalWeight, summary.MaxWeight)
		res.Containers = append(res.Containers, summary)
	}

	for _, it := range outcome.Unplaced() {
		res.Unplaced = append(res.Unplaced, it.ID)
	}
	return res
}

// PlacementsFor returns the placements loaded into the given container.
func (r Result) PlacementsFor(containerID string) []Placement {
	var out []Placement
	for _, p := range r.Placements {
		if p.ContainerID == containerID {
			out = append(out, p)
		}
	}
	return out
}

// PlacedCount returns the number of items that were loaded.
func (r Result) PlacedCount() int {
	return len(r.Placements)
}

func ratio(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return geometry.Round(part/whole, 4)
}
