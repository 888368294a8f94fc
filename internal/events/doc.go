// Package events carries batch progress notifications from the batch driver to
// whoever renders them.
//
// The driver emits a ProgressEvent when a run starts, after every settled item and
// once the run completes. Handlers registered on an EventEmitter turn these into log
// lines, a terminal status line or HTTP-visible run state, without the driver
// knowing which of them are attached.
package events
