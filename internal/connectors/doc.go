// Package connectors provides document sources for the ingestion pipeline.
// Each connector knows how to read raw documents from one kind of location
// and, where the location supports it, how to watch it for changes.
package connectors
