// Package invoke tracks the lifecycle of a single outbound manager
// action: Idle until triggered, InFlight while the request is out,
// then Succeeded or Failed. Each card owns one Invoker; its state
// drives which controls are enabled.
//
// The invoker performs no retries. A failed action is terminal and the
// user re-triggers it manually. Success messages are caller-supplied
// confirmations, not remote responses; the real effect only shows up
// in a later snapshot.
package invoke
