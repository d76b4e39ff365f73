// Package protocol defines the wire format of the embedded-resource
// action protocol spoken between untrusted widget content and its host.
//
// Every message on the channel is an Envelope with a type discriminant,
// an optional correlation id, and a payload object. Types fall into two
// families:
//
// Action types (content → host, correlated, one terminal response each):
//   - tool: invoke a named tool with parameters
//   - prompt: request a follow-up turn with the given text
//   - intent: high-level intent, optionally with parameters
//   - notify: fire a notification message
//   - link: request navigation to a URL
//
// Lifecycle types (presence, sizing, and data exchange):
//   - ui-size-change, ui-request-render-data, ui-lifecycle-iframe-ready,
//     ui-request-data, ui-lifecycle-iframe-render-data,
//     ui-message-received, ui-message-response,
//     ui-proxy-iframe-ready, ui-html-content
//
// Classification is a total function: anything that is not a known
// protocol message decodes to KindUnknown and must be passed through
// untouched by components that intercept a shared channel. Classify
// never returns an error and never panics on malformed input.
package protocol
