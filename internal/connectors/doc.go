// Package connectors holds the document sources docrag can ingest from.
// Each connector turns a source location into raw documents for the
// ingest service. The filesystem connector reads Markdown and text pages
// from local files and directories and can watch them for changes.
package connectors
