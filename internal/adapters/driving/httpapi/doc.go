// Package httpapi exposes documents, conversion status and page artifacts
// over HTTP using a chi router. It is the event entry point for hosting
// systems that upload or replace documents remotely, and the backend a
// page-by-page web viewer reads converted pages from.
package httpapi
