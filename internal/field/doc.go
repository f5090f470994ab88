// Package field samples the predator-prey model over state space.
//
// Everything here works on a rectangular [Grid] rather than on time:
//
//   - [BoundsFromTrajectory]: plot bounds from a computed trajectory
//   - [Sample]: unit direction vectors plus speed for quiver plots
//   - [ConservedField]: the first integral on a strictly positive grid
//   - [Levels] and [Isolines]: contour levels and marching-squares segments
//
// Bounds come from a trajectory, so a direction field can only be built
// after at least one integration run.
package field
