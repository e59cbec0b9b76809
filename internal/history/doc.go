// Package history holds the append-only per-course record history and its
// durable JSON store.
//
// This package is internal to wrtrack. The main components are:
//
//   - [History]: per-course, insertion-ordered record entries
//   - [Merge]: the append-on-change rule that keeps the history proportional
//     to actual record changes rather than poll count
//   - [Store]: whole-file JSON persistence with atomic replace
//
// The history is owned by the poll scheduler's single goroutine; this
// package performs no locking of its own.
package history
