// Package task schedules asynchronous, AI-call-bound work on a bounded-concurrency
// in-process queue. Tasks are admitted in FIFO order while fewer than MaxConcurrent
// are running, optionally paced by an inter-task delay, and each task reports
// exactly one outcome through its success or error callback.
//
// The queue never propagates task failures: a returned error, a panic or a
// timeout is delivered to that task's error callback and processing continues
// with the rest of the queue. Status transitions can be recorded in a TaskStore
// for later inspection.
package task
