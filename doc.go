// Package auth provides the authentication and authorization core for an
// admin style backend: credential hashing, JWT issuance and validation,
// cookie and bearer transport, route guards, and the session lifecycle
// endpoints built on top of them.
//
// Credentials:
//   - Passwords are stored as bcrypt hashes and verified through
//     ComparePasswordAndHash, which reports a single mismatch error no
//     matter why verification failed. GenerateSecurePassword and
//     GenerateMemorablePassword mint initial credentials for admin
//     provisioned accounts.
//
// Tokens and sessions:
//   - TokenService signs HS256 JWTs whose claims carry the subject, role,
//     and expiration. Validate collapses every failure mode into
//     ErrTokenInvalid so callers cannot probe why a token was rejected.
//     SessionObject is the decoded, transport-agnostic view of a token.
//
// Transport and guards:
//   - Tokens travel in an HttpOnly cookie or an Authorization bearer
//     header; the lookup chain is configurable and ordered. Gate exposes
//     RequireAuth and RequireAdmin middleware that resolve the identity
//     once per request and stash it in both fiber locals and the request
//     context.
//
// Lifecycle:
//   - AuthController mounts register, login, refresh, logout, me,
//     profile, and change-password as a JSON API, delegating writes to
//     command handlers that run inside repository transactions.
package auth
