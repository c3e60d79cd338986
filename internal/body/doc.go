// Package body holds the mutable state of every simulated point mass.
//
// A [Store] is a structure-of-arrays container: identifiers, positions,
// velocities and masses live in parallel slices indexed by storage position.
// Identifiers are stable across [Store.Permute]; storage indices are not.
//
// The store never grows or shrinks after [New]. Readers take a [Snapshot]
// (identifiers, positions, masses) or a [State] export; writers go through
// [Store.ForEachMut] or [Store.ForEachMutParallel], which hand out pointers
// to one body's velocity and position at a time.
//
//	st, err := body.New([]body.Spec{
//	    {Position: r2.Vec{X: -5}, Mass: 10},
//	    {Position: r2.Vec{X: 5}, Mass: 10},
//	})
//	snap := st.Snapshot()
package body
