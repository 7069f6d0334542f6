// Package app contains the core application logic. It wires the provider
// modules into a registry and implements the commands (validate, graph,
// resolve, schemas and docs), decoupled from any specific entrypoint like a
// CLI.
package app
