// Package middleware exposes the HTTP authentication gate protecting
// NoteVault's resource routes.
//
// [Guard] reads the Authorization header, verifies the bearer access token
// through Engine.VerifyAccess, and injects the authenticated [Identity] into
// the request context. On any failure it writes the uniform 401 error
// envelope and never invokes the downstream handler.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the Engine).
//   - Access Redis. The gate is stateless.
package middleware
