// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the prune lifecycle (validate, scan, report,
// act), decoupled from any specific entrypoint like a CLI.
package app
