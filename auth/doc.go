// Package auth provides the credential and role primitives used by the
// HTTP layer.
//
// This package implements:
//   - HS256 bearer credential verification against a shared secret
//   - The Identity attached to an authenticated request
//   - The closed Role enumeration and RoleSet membership checks
//
// Credentials are issued elsewhere; this package only verifies them.
package auth
