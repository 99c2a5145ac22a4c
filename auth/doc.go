// Package auth implements the authentication decision pipeline for the
// LaunchBay dashboard: the sign-in authorization, token enrichment, and
// session shaping stages the authentication layer invokes at well-defined
// lifecycle points.
//
// Decision pipeline:
//   - Callbacks.SignIn evaluates a sign-in attempt (credentials or OAuth)
//     against the account/user/MFA stores and returns a Decision: allow,
//     deny, or redirect (policy error pages and TOTP step-up challenges).
//   - Callbacks.EnrichToken copies identity claims onto the per-request
//     token on signIn/signUp triggers and attaches the raw cookie token.
//     Client-initiated update triggers never mutate server-held claims.
//   - ShapeSession builds the outward-facing session view from the token,
//     always constructing a new value rather than mutating the input.
//
// All store reads go through the narrow AccountStore, UserStore, and
// AuthenticatorAppStore interfaces so the pipeline can be unit tested
// without a live database. The pipeline itself never writes; session
// materialization and persistence stay with the calling framework.
package auth
