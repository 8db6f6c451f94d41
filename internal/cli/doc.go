// Package cli defines the tunesphere command tree.
//
// Every command that talks to the service builds the application with
// app.New for the duration of the call, so the stored session is restored
// first and persisted changes are flushed on exit. Most list commands honor
// the global --json flag.
package cli
