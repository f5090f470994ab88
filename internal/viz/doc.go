// Package viz renders simulation results in the terminal.
//
// [Canvas] is a braille sub-pixel surface; a [Viewport] maps prey and
// predator counts onto it so orbits, fixed points and direction fields can
// be traced at twice the horizontal and four times the vertical character
// resolution. [PopulationPlot] draws both species against time, [Panel]
// formats key/value summaries, and [Watch] is a Bubble Tea program that
// replays a finished experiment.
package viz
