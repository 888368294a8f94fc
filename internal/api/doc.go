// Package api serves the local HTTP API an editor uses to submit selections and
// batch runs and to watch the task queue. Handlers translate HTTP requests into
// service calls and queue submissions; they never touch notes directly.
//
// Routes:
//
//	POST /api/extract        queue a selection for extraction
//	POST /api/batches        start a batch run over a folder
//	GET  /api/batches/{id}   progress of a batch run
//	GET  /api/queue          queue length, active count and concurrency
//	GET  /api/tasks          recent task history
//	GET  /health             liveness check
package api
