// Package core provides the conversion pipeline shared by the batch runner
// and the HTTP server.
//
// This package ties the pieces together without knowing about folders,
// requests or flags. It can be used by web handlers, CLI commands, or tests
// without modification.
//
// # Pipeline
//
// One source file goes through three stages:
//
//  1. An [extract.Extractor] reads raw tables (normalize.Cell grids)
//  2. Every body cell is normalized (Clean -> Classify -> Canonicalize)
//  3. The normalized tables are handed to the assemble package for output
//
// [Convert] runs stages 1 and 2 and returns a [Conversion]; callers decide
// where stage 3 writes to.
//
// # Concurrency
//
// [ConversionLimiter] bounds how many conversions run at once when requests
// arrive from outside (HTTP uploads). The batch runner bounds its own fan-out
// with a worker count instead.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (no tables, unsupported, extraction, size)
//   - UPL001-UPL005: Conversion errors (busy, cancelled, timeout)
//   - VAL001-VAL003: Request validation errors
//   - RATE001: Rate limiting
//   - DB001-DB002: Run history errors
package core
