// Package quarter parses quarter labels from table headers and orders them
// into a chronological time axis.
//
// Header syntaxes are data: callers pass a list of Patterns and the first one
// that matches wins. DefaultPatterns covers the common national-accounts
// spellings such as "1990 1Q", "1990Q1" and "Q1 1990".
package quarter
