// Package types defines the framework-independent request and response
// models that handlers consume and produce.
//
// A Request is built once per inbound HTTP request by the request adapter and
// is not modified afterwards. A Response is produced by a handler and written
// to the wire by the response adapter, which picks a body encoding from the
// response's Content-Type and body kind.
package types
