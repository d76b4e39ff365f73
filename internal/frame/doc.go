// Package frame models embedded frames and their message ports.
//
// A Port is one endpoint of a cross-frame channel. Delivery carries the
// sender's identity, which is what lets receivers enforce trust
// boundaries ("only honor messages from my parent"). Anyone holding a
// reference to a Port can deliver into it with their own port as the
// attributed source, mirroring how any window can post to any other; a
// Pair of ports additionally links two endpoints so that Post targets
// the peer without the caller naming it.
//
// A Frame owns the pair of ports for one embedded view plus the view's
// mutable surface: source document or URL, sandbox token set, and layout
// style box. Navigation is a hook so that page behaviors (the proxy
// page, in-process content runtimes, test doubles) attach themselves
// when a frame is pointed at their origin.
package frame
