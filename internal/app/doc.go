// Package app contains the core application logic. It wires the workflow
// graph, the phase handler registry, the session store, and the archive
// backend into a runnable whole, decoupled from any specific entrypoint
// like a CLI or server.
package app
