/*
Package sandbox provides JavaScript execution for widget content scripts.

# Overview

Widget content runs inside isolated goja runtimes. Each runtime has:

  - CPU limits (execution timeout, interrupt polling)
  - API restrictions (disabled Node.js globals, no timers)
  - A glint bridge for message passing with the host frame

# Bridge

Scripts see a single `glint` global:

	glint.postMessage({type: "tool", messageId: "msg_1", payload: {...}})
	glint.onMessage(function(msg) { ... })

postMessage sends envelopes out the frame's content port; onMessage
receives envelopes delivered to it, including acks, terminal responses,
and render data snapshots. Deliveries that arrive while a script is
executing are queued and drained in order when it returns.

# Security Model

Sandboxed code cannot:
  - Access filesystem or network directly
  - Execute native code or spawn processes
  - Consume unbounded CPU time

All host interactions go through the glint bridge as protocol envelopes.

# Usage Example

	rt, err := sandbox.New(f.ContentPort(), sandbox.DefaultConfig())
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.Execute(ctx, script)
*/
package sandbox
