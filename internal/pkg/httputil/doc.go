// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Every handler file should use these helpers instead of writing raw
// http.ResponseWriter calls. This keeps the {"error": "..."} envelope and
// server-side error logging identical across endpoints.
package httputil
