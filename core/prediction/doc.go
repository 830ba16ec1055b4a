// Package prediction defines the contract with the remote cost-prediction
// service and the errors a prediction attempt can end with. Callers convert
// these errors into user-facing text with UserMessage.
package prediction
