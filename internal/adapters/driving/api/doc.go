// Package api provides the HTTP adapter for ingestion.
//
// Routes:
//
//	POST /ingest        multipart or form upload of one document
//	POST /ingest/batch  JSON array of server-side paths
//	GET  /health        storage connectivity
//
// Failures are mapped by category: validation errors are 400, chunking
// errors 422, storage errors 503 and anything else 500.
package api
