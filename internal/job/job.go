package job

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/load-planner/internal/geometry"
	"github.com/eugenenazirov/load-planner/internal/packing"
)

// DefaultMaxWeight is the capacity given to containers that do not declare one.
const DefaultMaxWeight = 18000.0

var (
	// ErrInvalidQuantity is returned when a container or item declares a negative quantity.
	ErrInvalidQuantity = errors.New("quantity must be a non-negative integer")
	// ErrEmptyJob is returned when a job file declares neither containers nor items.
	ErrEmptyJob = errors.New("job declares no containers and no items")
)

// ContainerSpec describes one container type in a job file.
type ContainerSpec struct {
	ID        string   `yaml:"id"`
	Length    float64  `yaml:"length"`
	Width     float64  `yaml:"width"`
	Height    float64  `yaml:"height"`
	MaxWeight *float64 `yaml:"max_weight"`
	Quantity  int      `yaml:"quantity"`
}

// ItemSpec describes one item type in a job file.
type ItemSpec struct {
	ID        string   `yaml:"id"`
	Length    float64  `yaml:"length"`
	Width     float64  `yaml:"width"`
	Height    float64  `yaml:"height"`
	Weight    float64  `yaml:"weight"`
	Quantity  int      `yaml:"quantity"`
	Rotations []string `yaml:"rotations"`
}

// Job is the content of a job file.
type Job struct {
	Containers []ContainerSpec `yaml:"containers"`
	Items      []ItemSpec      `yaml:"items"`
}

// Load reads a YAML or JSON job file.
func Load(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON job document. Unknown keys are rejected.
func Parse(data []byte) (Job, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var j Job
	if err := dec.Decode(&j); err != nil {
		if errors.Is(err, io.EOF) {
			return Job{}, ErrEmptyJob
		}
		return Job{}, fmt.Errorf("parse job: %w", err)
	}
	if len(j.Containers) == 0 && len(j.Items) == 0 {
		return Job{}, ErrEmptyJob
	}
	return j, nil
}

// Expand turns the job's specs into individual containers and items.
// A container spec with quantity N > 1 yields ids "<id>-1" to "<id>-N"; an
// item spec with quantity N > 1 yields ids "<id>_0" to "<id>_<N-1>".
// Containers without an id are named "Container-<position>"; items without
// an id get a short random id. defaultMaxWeight applies to containers that
// omit max_weight.
func (j Job) Expand(defaultMaxWeight float64) ([]packing.Container, []packing.Item, error) {
	var containers []packing.Container
	for idx, spec := range j.Containers {
		count, err := quantity(spec.Quantity)
		if err != nil {
			return nil, nil, fmt.Errorf("container %q: %w", spec.ID, err)
		}
		base := spec.ID
		if base == "" {
			base = fmt.Sprintf("Container-%d", idx+1)
		}
		maxWeight := defaultMaxWeight
		if spec.MaxWeight != nil {
			maxWeight = *spec.MaxWeight
		}
		for n := 1; n <= count; n++ {
			id := base
			if count > 1 {
				id = fmt.Sprintf("%s-%d", base, n)
			}
			containers = append(containers, packing.Container{
				ID:        id,
				Dimension: geometry.Dimension{Length: spec.Length, Width: spec.Width, Height: spec.Height},
				MaxWeight: maxWeight,
			})
		}
	}

	var items []packing.Item
	for _, spec := range j.Items {
		count, err := quantity(spec.Quantity)
		if err != nil {
			return nil, nil, fmt.Errorf("item %q: %w", spec.ID, err)
		}
		rotations, err := parseRotations(spec.Rotations)
		if err != nil {
			return nil, nil, fmt.Errorf("item %q: %w", spec.ID, err)
		}
		base := spec.ID
		if base == "" {
			base = uuid.New().String()[:8]
		}
		for n := 0; n < count; n++ {
			id := base
			if count > 1 {
				id = fmt.Sprintf("%s_%d", base, n)
			}
			items = append(items, packing.Item{
				ID:        id,
				Dimension: geometry.Dimension{Length: spec.Length, Width: spec.Width, Height: spec.Height},
				Weight:    spec.Weight,
				Rotations: rotations,
			})
		}
	}

	return containers, items, nil
}

func quantity(q int) (int, error) {
	if q < 0 {
		return 0, fmt.Errorf("%w, got %d", ErrInvalidQuantity, q)
	}
	if q == 0 {
		return 1, nil
	}
	return q, nil
}

func parseRotations(raw []string) ([]geometry.Rotation, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]geometry.Rotation, 0, len(raw))
	for _, name := range raw {
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			return nil, nil
		}
		r, err := geometry.ParseRotation(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", packing.ErrInvalidRotation, err)
		}
		out = append(out, r)
	}
	return out, nil
}
