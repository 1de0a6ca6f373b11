// Package application provides application initialization and dependency wiring.
// It turns a parsed job into packing engine input, runs the engine under the
// configured timeout and assembles the report, keeping the main package
// focused on CLI parsing and orchestration.
package application
