// Package factory builds pluggable modules (predictors, metrics sinks,
// suggestion sources) from a type name and a raw configuration map.
package factory
