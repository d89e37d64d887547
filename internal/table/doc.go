// Package table flattens cross-tabulated datasets into row-oriented record sets.
//
// A CrossTab is a matrix indexed by two named category dimensions with one
// numeric measure per cell. Normalize turns it into a RecordSet: one Record per
// non-missing cell, in the column-major order R's as.data.frame.table uses.
//
// Key constraints:
//   - Normalize is pure: the same CrossTab and Roles always yield an equal RecordSet
//   - Missing cells are dropped, never coerced to zero
//   - Record field names come from Roles, not from storage order
//   - RecordSet is immutable; Filter returns a derived index view
//   - Labels are NFC normalized at this boundary
//
// table imports nothing internal. Every other package that touches data
// depends on it.
package table
