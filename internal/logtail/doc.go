// Package logtail reads the tail of the client log file.
//
// Read returns the last N raw lines using a ring buffer, so memory stays
// O(N) whatever the file size. A missing file yields no lines and no error.
//
// Parse decodes the JSON lines produced by internal/logging into Entry
// values; Entry.Format renders one for a terminal. ReadEntries combines both
// with a minimum level filter and backs the `tunesphere logs` command.
package logtail
