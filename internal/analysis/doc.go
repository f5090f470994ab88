// Package analysis derives summaries from computed trajectories.
//
// Nothing here integrates; every function consumes a [dynamo.Trajectory]
// produced elsewhere:
//
//   - [NewPhasePortrait]: 2D phase space projection and ASCII rendering
//   - [CrossingTimes] and [CrossingPeriod]: oscillation period from
//     upward crossings of a level
//   - [DominantPeriod]: period of the strongest spectral peak
//   - [Summarize]: per-species extrema and means
//
// # Period Estimation
//
// For the classic system the prey crosses c/d once per cycle:
//
//	period, err := analysis.CrossingPeriod(traj, 0, p.C/p.D)
package analysis
