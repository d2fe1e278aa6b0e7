// Package filesystem implements the File artifact backend.
//
// Each document's committed artifacts are reached through a symlink:
//
//	<root>/<documentID> -> .versions/<documentID>/<batchID>
//	<root>/.versions/<documentID>/<batchID>/{normal,small,large,text}/page-0001.*
//
// A batch writes into its own version directory. Commit swaps the link
// with a rename, so readers see either the old set or the new one.
package filesystem
