// Package batch coordinates concurrent image uploads for one editing session.
//
// A Coordinator owns an ordered list of slots. Each submitted candidate gets
// a slot and its own goroutine running validation, optional compression and
// upload. Slot state lives behind a single atomic pointer to an immutable,
// versioned list; every change copies the list, edits one element and swaps
// it in with CompareAndSwap, retrying on contention.
//
// Images that make it into the published list are the committed succeeded
// slots, in slot order. A batch commits once every one of its slots is
// terminal, and the list is published to the Observer exactly once per
// completed batch, retry and removal.
package batch
