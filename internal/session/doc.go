// Package session holds the signed-in identity for the running client.
//
// The Store moves from restoring to authenticated or unauthenticated. Restore
// reads the persisted "token" and "user" keys; Login, Register and AdminLogin
// replace the identity wholesale; Logout clears it; UpdateUserProfile swaps
// in the user object the server returns.
//
// Mutating operations never return errors. They return a Result whose
// Message is the server's message, or a fixed fallback such as "Login
// failed", ready to show to the user.
//
// Persistence is write-through and last-write-wins. Nothing is transactional:
// other processes sharing the same kvstore may overwrite the keys at any time,
// and the store only rereads them on Restore.
package session
