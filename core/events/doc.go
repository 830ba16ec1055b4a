// Package events defines the events emitted on the event bus while a
// prediction request moves through its lifecycle.
package events
