// Package input reads entity source files into tables of rows.
//
// Two formats are supported, chosen by file extension:
//   - .csv: the first record is the header; every cell is a String
//   - .json: an array of objects; values keep their JSON types, so list
//     fields may arrive as native arrays
//
// Alongside the rows a Table carries the set of column names known to
// exist in the source. The resolver uses it to tell an empty cell apart
// from a column that is not there at all.
package input
