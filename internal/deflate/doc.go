// Package deflate rebases the GDP deflator to a base quarter and turns nominal
// aggregates into real series.
package deflate
