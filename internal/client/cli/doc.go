// Package cli provides the gophmarket command-line client.
//
// It wires configuration, the local draft database, the upload transport
// and the listings store, then exposes them through a cobra command tree:
//
//   - shell (default): an interactive REPL over the current draft
//   - upload: add files to a draft and wait for the batch
//   - drafts, publish, orphans, version
//
// In the shell, add and retry run in the background so cancel can target an
// upload that is still in flight. Progress is drawn by a renderer that uses
// in-place bars on a terminal and one line per transition otherwise.
package cli
