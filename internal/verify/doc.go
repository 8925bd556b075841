// Package verify checks downloaded release assets against checksums
// and detached signatures before they are installed.
//
// Three independent mechanisms are supported:
//
//   - SHA256 checksums, either as a bare digest file or a SHA256SUMS
//     style listing with one "digest  filename" pair per line.
//   - GPG detached signatures (armored or binary) checked against a
//     caller-supplied keyring file.
//   - Minisign signatures checked against a minisign public key file.
//
// Which mechanism applies is the caller's decision; the package never
// guesses based on file names.
package verify
