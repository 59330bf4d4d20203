// Package openapi describes a style registry's settings payload as an
// OpenAPI 3 document and validates submitted payloads against it.
//
// The generated document has a single operation whose request body is the
// settings object: one property per field, nested under its group path.
// Responsive fields accept either a plain value or a map keyed by breakpoint
// name. Every field schema carries x-style-* extensions (type, unit,
// responsive, label) so admin form builders can render the right control.
package openapi
