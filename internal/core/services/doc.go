// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IngestService is the ingestion core: validate, extract, normalise,
// chunk and persist one document as a single atomic batch. BatchService
// fans documents out over a worker pool; HealthService probes storage.
package services
