// Package component defines the lifecycle contract shared by the
// long-lived parts of artifactstore (storage, telemetry).
//
// A Registry starts components in registration order and stops them in
// reverse, so sessions opened by one component outlive their users.
package component
