// Package poller contains the upstream records client and the poll
// scheduler that drive wrtrack's fetch, merge, persist cycle.
//
// This package is internal to wrtrack. The main components are:
//
//   - [Client]: batched fetch of current records with a bounded, flat-cadence
//     retry loop
//   - [Scheduler]: fixed-period poll loop that subtracts its own cycle time
//     from each sleep
//
// The two are wired together by the CLI in cmd/wrtrack. The scheduler is the
// sole owner of the in-memory history; everything it does is single-threaded
// by construction.
package poller
