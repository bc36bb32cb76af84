// Package viz provides a terminal replay viewer for flight logs.
//
// The viewer is a Bubble Tea program that plays a recorded flight back in
// simulated time, drawing the trajectory on a Braille canvas next to a
// panel of live readings and an altitude chart.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from the first row
//	[ ]   - Step one row back/forward (pauses)
//	+ -   - Double/halve playback speed
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
