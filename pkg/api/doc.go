// Package api exposes the provisioning engine over HTTP. It is a thin
// adapter: request decoding, response encoding, and status-code mapping
// live here; all domain decisions stay in the engine.
package api
