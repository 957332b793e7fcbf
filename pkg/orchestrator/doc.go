// Package orchestrator wires the source → domain object → form → renderer
// pipeline behind a single Generate call. Sources are declarative documents
// or OpenAPI schemas; configuration supplies columns, debounce and the CSS
// cascade.
package orchestrator
