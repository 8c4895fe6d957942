// Package http exposes the engine over HTTP.
//
// The stateless API mirrors the engine: the client carries params and state
// history between calls. GET /explorations/{id}/play upgrades to a websocket
// backed by a server-held session, and GET /events streams analytics as
// server-sent events. Requests are validated against the embedded openapi.yaml.
package http
