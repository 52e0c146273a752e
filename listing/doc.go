// Package listing provides concurrent recursive directory listing.
//
// A listing is driven by a fixed pool of workers that pull directory tasks from
// a shared queue. Every discovered subdirectory becomes a new task, so the
// total amount of work is not known when the pool starts. Completion is
// detected with a pending-work counter: a producer counts a child task before
// it is queued, and a worker only releases its own count after all children
// have been counted. The counter reaching zero means no task is queued and no
// task is running.
//
// Key Components:
//
//   - ResultSet: sharded, deduplicating set of discovered paths
//   - TaskQueue: unbounded (or capacity-limited) blocking FIFO of tasks
//   - Tracker: pending-work counter with a blocking wait for zero
//   - Pool: fixed set of worker goroutines with cooperative shutdown
//   - Lister: entry point that seeds the queue, waits for idle and tears down
//
// Filesystem access goes through the FileSystem interface so the OS can be
// swapped for MemFS in tests, or wrapped by Throttle to rate-limit listings.
// ListSerial, ListSpawn and ListExecutor are reference implementations used
// to verify and benchmark the pool.
package listing
