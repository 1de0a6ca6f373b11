// Package result turns a packing outcome into the flat placement table and
// per-container summaries handed to rendering and export collaborators.
package result
