// Package errors provides the structured error type used across artifactstore.
//
// Every failure that crosses a package boundary is an *AppError carrying a
// machine-readable code, so callers can tell an absent blob from a failed
// write or a broken directory walk with errors.As or HasCode.
package errors
