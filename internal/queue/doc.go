// Package queue persists tracked videos in SQLite and mediates their
// lifecycle: discovered videos move pending → fetching → fetched →
// summarizing → summarized → notifying → completed, with failed as the
// terminal error state. The store claims work atomically so a single poll
// loop and CLI commands can share the database safely.
package queue
