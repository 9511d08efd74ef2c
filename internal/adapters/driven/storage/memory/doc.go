// Package memory provides in-process implementations of the storage ports.
// Nothing is persisted; they back tests and dry runs.
package memory
