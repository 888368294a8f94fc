// Package domain contains the core entities of the note-processing tool: the
// structured results of AI analysis, the notes they are written into and the
// batch operations that produce them. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
