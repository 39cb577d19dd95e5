// Package token manages issuance and verification of the two NoteVault
// credential kinds, short-lived access tokens and long-lived refresh
// tokens, signed with two distinct HS256 secrets.
package token
