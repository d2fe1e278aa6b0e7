// Package file provides the TOML configuration store.
//
// The configuration lives in ~/.documentviewer/config.toml unless another
// directory is given. Keys are addressed with dot notation ("storage.type")
// and written back as nested tables.
package file
