// Package orchestrator runs the paced, resumable send loop.
//
// A run consumes one immutable Job. It dedupes the batch, snapshots the
// sent-log once, and then walks the numbers strictly in order on a single
// goroutine: skip numbers already sent, dispatch the rest through the
// gateway, record each success in the sent-log before moving on, and sleep a
// fixed inter-message delay after every item. Progress is reported as Events
// on a channel; nothing is shared with the caller while the run is live.
//
// # Failure semantics
//
// An empty batch is the only fatal input. A gateway error, or a sent-log
// write that fails after a dispatch, fails that one number and the loop
// continues; there are no retries. A sent-log that
// cannot be read aborts before anything is dispatched.
//
// # Durability
//
// A number is appended to the sent-log as soon as its dispatch returns
// successfully. Sent-log and journal writes ignore cancellation so that a
// dispatch that went out is never forgotten because the run was stopped.
//
// # Cancellation
//
// The context is checked between items and during sleeps. A cancelled run
// emits EventCancelled and returns ctx.Err() with the partial Summary.
package orchestrator
