// Package project holds the annotation aggregate: groups, categories,
// rules, free-form project attributes and the session bookkeeping of which
// images are loaded.
//
// Every mutation goes through a *Project and is serialized by its mutex.
// Calls out to the renderer and the pipeline service happen after the lock
// is released, on a snapshot, and their failures become status messages
// instead of errors.
package project
