// Package viz draws a running N-body simulation in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps the simulator at a fixed rate and renders it
//   - [Canvas]: braille dot grid with per-cell colour
//   - [Camera]: world to canvas projection with auto-fit, zoom and pan
//   - [Palette]: mass to colour mapping blended between theme colours
//
// Bodies are drawn as discs of radius sqrt(mass/pi) in world units.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial bodies
//	+/-   - Zoom in/out
//	Arrows, hjkl - Pan
//	F     - Re-enable auto-fit
//	V     - Toggle velocity vectors
//	P     - Toggle trails
//	T     - Cycle color themes
//	Q     - Quit
package viz
