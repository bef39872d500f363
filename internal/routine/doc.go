// Package routine holds the pure rules of the sleep log: numbering events by
// day since the first recorded event, deciding when the trial period has
// expired, and folding a day's events into the daily summary.
//
// Nothing in this package touches storage or the clock; callers pass "now"
// explicitly.
package routine
