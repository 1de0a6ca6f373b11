// Package geometry provides the axis-aligned box primitives used by the
// packer: dimensions, points, rotations, and the fit, overlap and
// containment predicates. Everything here is stateless and safe for
// concurrent use.
package geometry
