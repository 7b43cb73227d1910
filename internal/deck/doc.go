// Package deck is the boundary between ghdeck's controls and whatever shows
// them: the Stream Deck plugin connection or the terminal deck.
//
// A Host enumerates visible buttons by Kind, writes images and titles, and opens
// URLs. Order gives monitor buttons their slot order. Dispatcher fans host
// events out to one Handler per Kind, and DedupDisplay suppresses writes that
// would not change what a key shows.
package deck
