// Package signer issues and verifies the signed policy cookies that grant a
// browser or viewer access to one gallery folder until an expiry time.
//
// Three cookies travel together:
//
//	Gallery-Policy       URL-safe base64 of the JSON policy
//	Gallery-Signature    URL-safe base64 of the keyed BLAKE2b-256 MAC
//	Gallery-Key-Pair-Id  which signing key produced the MAC
//
// The base64 alphabet substitutes '+' with '-', '=' with '_' and '/' with
// '~', so values are safe in cookies and query strings without escaping.
package signer
