// Package api provides an HTTP client for the TuneSphere REST API.
//
// # Overview
//
// The client is bound to a single base URL (origin plus base path, default
// http://localhost:5000/api). Endpoints are exposed as groups on *Client:
//
//   - Auth: register, login, admin login
//   - Users: profile, favorites, recently played
//   - Music: search, trending, by id, by platform
//   - Playlists: CRUD, add/remove song, featured
//   - Admin: dashboard, users, activity, top songs, featured playlists
//
// # Authentication
//
// Every request outside the Auth group asks the TokenSource for the current
// bearer token and, when one exists, sends it as "Authorization: Bearer
// <token>". StoredToken reads the token persisted by the session store, so a
// login performed in one process is picked up by the next request in any
// other. A failed token read is logged and the request is sent without it.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Send and accept JSON
//   - Carry User-Agent: tunesphere/0.1 and a fresh X-Request-ID
//   - Fail after a fixed 10 second ceiling
//
// There is no retry and no backoff. A failed call fails once and the error is
// returned to the caller.
//
// # Error Handling
//
// Non-2xx responses return *Error with the status and, when the body is a
// JSON object with a "message" field, the server's message. MessageOf turns
// any error into a user-facing string with a caller-chosen fallback:
//
//	resp, err := client.Auth.Login(ctx, email, password)
//	if err != nil {
//		fmt.Println(api.MessageOf(err, "Login failed"))
//	}
//
// Network and timeout failures are wrapped as "execute request: ...";
// malformed bodies as "decode response: ...".
//
// # Payload Tolerance
//
// The backend is not strict about shapes, and the decoders absorb that:
//
//   - ID accepts strings and numbers
//   - Track accepts a bare id in place of an object
//   - list endpoints accept a bare array or an object wrapping one
//   - User keeps the raw payload so unknown server fields round-trip
//
// # Thread Safety
//
// Client is safe for concurrent use.
package api
