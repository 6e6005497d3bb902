/*
Package snapshot implements per-object opt-in backtracking.

Objects that want their state to follow the browser's back button implement
Snapshotter. A Builder walks the live graph (through Walker roots) and records
each registered object's saved state exactly once; the resulting Snapshot is
immutable and can be applied any number of times to put every captured object
back where it was.

Reference-typed fields are held in a Cell so that restoring swaps the pointer
only, never the pointed-to object.
*/
package snapshot
