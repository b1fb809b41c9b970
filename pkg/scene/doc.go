// Package scene defines the head-model scene produced by script evaluation.
// A scene is a small DAG of shells, lens inclusions, placements and model
// groups. It is never mutated after evaluation; each run builds a new one.
package scene
