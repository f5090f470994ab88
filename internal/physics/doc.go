// Package physics provides the predator-prey models.
//
// Each model implements the [dynamo.System] interface for time
// integration and exposes a Rates(x, y) method for sampling the vector
// field on a grid. Both call sites share one formula function per model:
//
//   - [LotkaVolterra]: classic model, formula [Rates]
//   - [Logistic]: prey with carrying capacity, formula [LogisticRates]
//
// [LotkaVolterra] also implements [dynamo.Invariant] through the first
// integral [Conserved], and both models locate their fixed points in
// closed form.
//
// # Example
//
//	lv, err := physics.NewLotkaVolterra(physics.Params{A: 0.1, B: 0.02, C: 0.3, D: 0.01})
//	if err != nil {
//	    return err // wraps dynamo.ErrParameter
//	}
//	points, _ := lv.CriticalPoints() // (0,0) and (30,5)
package physics
