// Package handler defines the phase-handler contract the engine dispatches
// through, and the registry mapping node type tags to handlers.
//
// The registry is built explicitly at startup. A node type without a
// handler is a configuration error caught when the engine is constructed,
// never a runtime surprise.
package handler
