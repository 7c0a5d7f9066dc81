// Package services defines shared utilities consumed by the stage drivers and
// their external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp episode IDs, stage names, and run
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so stage drivers can
//     classify collaborator failures into per-episode result kinds.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across ingest, clean, tag, and validate.
package services
