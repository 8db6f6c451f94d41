// Package library keeps the user's song collections: the server-side
// favorites list and the locally cached recently-played list.
package library
