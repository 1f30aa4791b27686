// Package costing computes recipe costs over a composition graph.
//
// A recipe is composed of ingredients and of other recipes. The package keeps the
// sub-recipe graph acyclic at mutation time (WouldCreateCycle), resolves total and
// per-unit costs with a request-scoped memo (Resolver), and answers direct-usage lookups
// (UsedIn). All operations run against a Graph, normally an immutable Snapshot loaded
// before resolution starts, and perform no I/O of their own.
package costing
