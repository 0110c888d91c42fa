// Package cycle computes business-cycle statistics over percent-deviation
// cycles: volatility and comovement with GDP, prominence-filtered turning
// points and shock episodes beyond a multiple of the GDP standard deviation.
//
// All thresholds are derived from unrounded values. Round2 exists for display
// only.
package cycle
