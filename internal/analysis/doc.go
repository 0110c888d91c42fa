// Package analysis orchestrates the macroeconomic analyses over cleaned
// tables.
//
// An Analyzer runs the business-cycle pipeline (series lookup, time axis,
// deflator rebasing, real series, log HP filter, statistics, turning points,
// shocks and presentation smoothing), growth rates and, when an annual table
// is supplied, productivity. Each stage runs in its own span and records its
// duration. RunAll executes the tasks concurrently and keeps their failures
// separate.
package analysis
