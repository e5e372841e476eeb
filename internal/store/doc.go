// Package store is the single writer of the teaching-software document.
//
// Every mutation follows the same sequence:
//
//  1. take the writer lock (in-process mutex plus a file lock beside the
//     document)
//  2. reload the document from disk
//  3. write the rolling and archival backups
//  4. apply the change to the freshly loaded copy
//  5. check uniqueness and reference invariants for the touched records
//  6. reconcile module ownership on both sides
//  7. append an audit entry
//  8. persist atomically (temp file plus rename)
//
// A failure at any step returns a *model.Error and leaves the document on
// disk untouched. Reads never take the writer lock; Reload returns an
// immutable Snapshot.
//
// The tabular mirror (ExportTabular, ImportTabular, SyncStatus) and the
// fsnotify watcher (Watch) live on the same Store so imports share the
// writer discipline.
package store
