// Package errors provides structured, actionable errors for the storefront
// tooling.
//
// Each error has a unique code (e.g., "E120") that maps to a short message
// and a longer explanation. Callers add context with the builder methods:
//
//	err := errors.New("E120").
//	    WithDetail(`backend "mongo" is not supported`).
//	    WithSuggestion("Set storage.backend to memory, file, redis, sql or s3")
//
//	fmt.Println(err.Format())
//
// Codes are grouped by category: config (E100-E119), storage (E120-E139),
// i18n (E140-E159), validation (E160-E179) and cli (E180-E199).
//
// Store operations never surface these errors; they are for configuration,
// the HTTP harness and the CLI.
package errors
