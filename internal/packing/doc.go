// Package packing implements a greedy three-dimensional bin packer.
//
// Items are offered one at a time, largest first by default, to containers
// in caller order. Inside a container the packer tries extreme points (the
// container origin and the far corners of already placed boxes) from the
// floor up, and every allowed orientation at each point. The first
// placement that stays inside the container, overlaps nothing and keeps the
// load within the weight limit is committed. Earlier decisions are never
// revisited.
package packing
