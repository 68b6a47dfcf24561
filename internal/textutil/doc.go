// Package textutil provides filename sanitization and small string
// helpers shared by the transcript cache and manual-drop ingestion.
package textutil
