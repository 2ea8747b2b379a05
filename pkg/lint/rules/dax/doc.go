// Package dax provides checks over DAX measure expressions.
//
//   - DX01: In-List Literal - IN membership test against a long inline list
package dax
