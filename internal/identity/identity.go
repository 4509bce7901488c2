// Package identity issues and verifies the RS256 session tokens that carry a
// caller's user ID and board role, and resolves them into a policy.Principal
// for the HTTP layer.
//
// It provides:
//   - LoadOrCreateKey: reads the PEM signing key, generating it on first run
//   - TokenIssuer: issues and verifies user session JWTs
//   - RequireUser: Gin middleware enforcing a Bearer session token
package identity
