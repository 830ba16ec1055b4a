// Package form holds the trip parameters being edited and derives whether
// they form a submittable request. Values are stored as typed; numeric
// fields are only parsed when validity is evaluated.
package form
