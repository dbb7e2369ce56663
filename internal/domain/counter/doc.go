// Package counter holds the counter aggregate, its value history, the bounded
// undo buffer used by unsaved counters, and the small entities that hang off a
// counter (row notes, work sessions, reminders).
//
// Counter methods are the only legal way to change a count. Decrement is
// floor-guarded and Reset always records, even at zero.
package counter
