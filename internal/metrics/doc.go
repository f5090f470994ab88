// Package metrics implements [dynamo.Metric] observers that are fed every
// sample of a trajectory.
package metrics
