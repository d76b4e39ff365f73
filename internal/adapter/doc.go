// Package adapter translates the generic embedded-resource action
// protocol into a host platform's native capability API, so the same
// embedded content runs unmodified against a native protocol host and
// against the adapted platform.
//
// The adapter lives in the content's execution context. It wraps the
// content's single outgoing channel capability: every message the
// content sends is classified first. Protocol traffic is handled
// internally — acknowledged, mapped to a native call with a timeout,
// and answered with a synthetic terminal response dispatched back into
// the content. Everything else is forwarded unchanged to the original
// channel function, preserving unrelated users of the same channel.
//
// The adapter also observes the platform's state changes and
// re-publishes a fresh render data snapshot to the content on each
// change, plus once immediately at install.
package adapter
