// Package selector parses the path expressions embedded in layout attribute
// values: path selectors such as "$parent/Panel/$ancestor[@type=Button]" and
// property binds such as "{$this/Label/@Text}".
//
// Parsing never fails outright. Scan and parse errors are collected as
// diagnostics with offsets relative to the expression text, and the best
// effort AST is returned so later stages can resolve as much as possible.
package selector
