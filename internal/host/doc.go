// Package host implements the embedding side of the action protocol:
// the renderer that owns a frame, mounts untrusted resource content
// into it, applies inbound sizing and lifecycle messages, and surfaces
// actions to the embedding application through a single callback.
//
// Mount modes, in order of selection:
//   - proxy: when a proxy origin is configured the frame is navigated
//     to the proxy page and the raw HTML travels as a sandbox transfer
//     payload only after the proxy signals readiness
//   - srcdoc: inline HTML loaded directly into the frame
//   - src: remote URL content
//
// Every recognized action is acknowledged with ui-message-received
// before its terminal ui-message-response; acknowledgment and
// settlement are separate by design.
package host
