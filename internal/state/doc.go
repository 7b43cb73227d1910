// Package state owns the one cached copy of the polled GitHub data and decides
// when the deck is redrawn.
//
// # Overview
//
// A Store holds a Snapshot: the three categories of items produced by one fetch
// cycle, replaced wholesale and never patched. Every control on the deck reads
// from the same Snapshot, so the grid, the pagination arrows and the page
// indicator always agree with each other.
//
//	ticker ──→ Refresh ──→ Resolve user ──→ 3 searches ──→ publish Snapshot
//	                                                            │
//	RequestRender ──→ Coalescer (200 ms window) ──────────────→ notify observers
//	                                                        (in registration order)
//
// # Refresh
//
// Start runs Refresh once immediately and then on a fixed ticker for the life of
// the context. A Refresh that cannot resolve the user publishes an empty
// Snapshot with LastError set; buttons show nothing rather than an error.
//
// Refreshes may overlap when a search is slower than the poll interval. Each
// takes a generation number when it starts, and a result is published only if
// no later-started refresh has been published already and the credential it
// ran under is still the configured one. Late results are dropped.
//
// # Rendering
//
// Observers run one at a time, in the order they were registered, each
// returning before the next starts. Controls that change settings call
// RequestRender instead of redrawing directly; requests arriving within the
// render window, or while a pass is running, fold into one trailing pass that
// reads the latest settings and Snapshot. A refresh notifies through the same
// Coalescer, so it satisfies any request still waiting.
//
// # Concurrency
//
// The Snapshot is swapped under a sync.RWMutex and readers receive a value.
// Item slices handed out are copies.
package state
