// Package batch runs one queued task per file and aggregates their outcomes.
//
// A Driver copies its batch settings into the shared task queue, enqueues a task for
// every path (optionally pausing between enqueues), counts successes and failures as
// tasks settle and publishes progress events. It holds no concurrency logic of its
// own; admission, pacing and isolation all belong to the queue.
package batch
