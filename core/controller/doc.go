// Package controller drives one prediction request at a time through its
// lifecycle (Idle, Submitting, Succeeded, Failed) and derives the cost
// figures shown to the user.
//
// The Controller owns the form. Every edit that reaches the form while the
// controller is Failed drops the error and returns to Idle. A request that
// has been issued is never cancelled: its outcome is applied when it
// arrives, even if the form changed in the meantime.
package controller
