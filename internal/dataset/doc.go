// Package dataset loads cross-tabulated tables from their upstream sources.
//
// A Source yields a table.CrossTab. File sources decode YAML, JSON or CUE
// by extension; CUE inputs are unified with the embedded #CrossTab schema
// before decoding, so structural mistakes are reported with a position.
// WorldPhones returns the embedded default dataset.
//
// Decoding never interprets cell values beyond the decoder's own types.
// Classifying cells as numeric, missing or unsupported is left to
// table.Normalize.
package dataset
