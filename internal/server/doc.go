// Package server exposes a Page over HTTP with gin.
//
// Routes:
//
//	GET  /                 page: status line, selector form, chart frame
//	GET  /chart            latest rendered chart HTML
//	POST /select           form submission of a selection
//	GET  /api/status       status line
//	GET  /api/options      selector options and current value
//	GET  /api/selection    selection replicas
//	POST /api/selection    {"value": "..."} user selection
//	GET  /api/records      normalized records, optionally ?category=
//	GET  /healthz          liveness
//
// API routes other than /api/status answer 503 until the page is ready.
package server
