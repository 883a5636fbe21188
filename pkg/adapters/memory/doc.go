// Package memory provides in-process implementations of the core ports: a key-value
// persistence layer, a multi-account remote gateway with failure injection, and a
// reminder scheduler that records every call. They back tests and local demos.
package memory
