// Package job reads packing jobs (container and item specs with quantities)
// from YAML or JSON files and expands them into packer input.
package job
