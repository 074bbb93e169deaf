// Package pricing implements the market pricing analytics engine used to
// estimate a fair price for a vehicle from a set of comparable listings.
//
// Every function in the package is a pure computation over its arguments:
// there is no I/O, no shared mutable state, and an Engine may be used from
// many goroutines at once.
//
// # Core Components
//
//   - stats.go: percentile, quartiles, mean, population standard deviation, mode
//   - distribution.go: adaptive five-bucket price distribution
//   - apportion.go: integer percentages that always sum to 100
//   - demand.go: demand level from comparable count, brand and vehicle age
//   - competition.go: competition intensity and the level derived from it
//   - kilometraje.go: bounded odometer-based price factor
//   - engine.go: assembles all of the above into a MarketSnapshot
//
// # Distribution Methods
//
// The binning method is chosen by sample size:
//
//	n >= 12           quartile   [min,Q1] [Q1,Q2] [Q2,Q3] [Q3,P90] [P90,max]
//	5 <= n < 12       deviation  mean + k·stdDev cuts, k in {-1.5,-0.5,0.5,1.5}
//	n < 5, distinct   linear     five equal-width bands
//	n < 5, repeated   fixed      ratio bands anchored at the repeated price
//
// # Usage Example
//
//	engine, err := pricing.NewEngine(pricing.DefaultParams(), logger)
//	if err != nil {
//	    return err
//	}
//	snapshot := engine.ComputeMarketSnapshot(comparables, vehicle)
//	adj := engine.ComputeKilometrajeFactor(62000, comparables, vehicle)
//
// An empty comparable set never fails: it yields a fallback snapshot with
// zeroed statistics, low demand and very low competition.
package pricing
