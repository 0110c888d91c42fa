// Package table loads labelled spreadsheet tables from CSV and XLSX files,
// cleans them and locates series rows by configurable name matchers.
package table
