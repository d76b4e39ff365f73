package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/glintui/glint/backend/internal/frame"
	"github.com/glintui/glint/backend/internal/protocol"
)

// Runtime wraps a goja VM hosting widget content scripts. The script
// sees a `glint` global whose postMessage sends envelopes out the
// frame's content port and whose onMessage handler receives envelopes
// delivered to it.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex

	port     *frame.Port
	unlisten func()
	handler  goja.Callable

	// Deliveries arriving while a script runs are queued and drained
	// after it returns. Dispatch is synchronous on the sender's
	// goroutine, so delivering straight into the VM mid-script would
	// deadlock on mu.
	inboxMu   sync.Mutex
	inbox     []frame.Message
	executing bool

	// Interrupt channel
	interrupt chan struct{}
}

// New creates a runtime bound to a frame's content port. port may be
// nil for scripts that never message the host.
func New(port *frame.Port, config Config) (*Runtime, error) {
	vm := goja.New()

	r := &Runtime{
		vm:        vm,
		config:    config,
		console:   []LogEntry{},
		port:      port,
		interrupt: make(chan struct{}),
	}

	if config.MaxCallStack > 0 {
		vm.SetMaxCallStackSize(config.MaxCallStack)
	}

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}

	if port != nil {
		r.unlisten = port.Listen(r.deliver)
	}

	return r, nil
}

// Execute runs a content script with timeout and interrupt controls.
func (r *Runtime) Execute(ctx context.Context, script string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	result := &Result{
		Console: []LogEntry{},
	}

	r.inboxMu.Lock()
	r.executing = true
	r.inboxMu.Unlock()

	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	go func() {
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-r.interrupt:
			return
		}
	}()

	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()

	val, err := r.vm.RunString(script)

	close(r.interrupt)
	r.interrupt = make(chan struct{})

	r.drainInbox()

	result.Duration = time.Since(start)

	r.consoleMu.Lock()
	result.Console = append([]LogEntry{}, r.console...)
	r.consoleMu.Unlock()

	if err != nil {
		result.Err = err
		return result, err
	}

	result.Value = r.exportValue(val)
	return result, nil
}

// deliver hands an incoming envelope to the script's registered
// handler. Deliveries before a handler is registered are dropped, like
// events fired before a listener attaches.
func (r *Runtime) deliver(msg frame.Message) {
	r.inboxMu.Lock()
	if r.executing {
		r.inbox = append(r.inbox, msg)
		r.inboxMu.Unlock()
		return
	}
	r.inboxMu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoke(msg)
}

// drainInbox flushes queued deliveries in arrival order. Caller holds mu.
func (r *Runtime) drainInbox() {
	for {
		r.inboxMu.Lock()
		if len(r.inbox) == 0 {
			r.executing = false
			r.inboxMu.Unlock()
			return
		}
		msg := r.inbox[0]
		r.inbox = r.inbox[1:]
		r.inboxMu.Unlock()

		r.invoke(msg)
	}
}

// invoke calls the script handler with one envelope. Caller holds mu.
func (r *Runtime) invoke(msg frame.Message) {
	if r.handler == nil || r.vm == nil {
		return
	}

	data := map[string]interface{}{
		"type": msg.Env.Type,
	}
	if msg.Env.MessageID != "" {
		data["messageId"] = msg.Env.MessageID
	}
	if msg.Env.Payload != nil {
		data["payload"] = msg.Env.Payload
	}

	// Handler exceptions stay inside the sandbox.
	_, _ = r.handler(goja.Undefined(), r.vm.ToValue(data))
}

// setupGlobals configures the glint bridge and strips node-shaped globals
func (r *Runtime) setupGlobals() error {
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		console.Set("log", r.makeConsoleFunc("log"))
		console.Set("warn", r.makeConsoleFunc("warn"))
		console.Set("error", r.makeConsoleFunc("error"))
		console.Set("info", r.makeConsoleFunc("info"))
		r.vm.Set("console", console)
	}

	// Timers are no-ops; scripts run to completion inside Execute
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})

	glint := r.vm.NewObject()
	glint.Set("postMessage", r.postMessage)
	glint.Set("onMessage", r.onMessage)
	r.vm.Set("glint", glint)

	return nil
}

// postMessage sends a script-built envelope out the content port. A
// value without a string type field is dropped.
func (r *Runtime) postMessage(call goja.FunctionCall) goja.Value {
	if r.port == nil || len(call.Arguments) == 0 {
		return goja.Undefined()
	}

	obj, ok := call.Arguments[0].Export().(map[string]interface{})
	if !ok {
		return goja.Undefined()
	}

	env := protocol.Envelope{}
	if t, ok := obj["type"].(string); ok {
		env.Type = t
	}
	if env.Type == "" {
		return goja.Undefined()
	}
	if id, ok := obj["messageId"].(string); ok {
		env.MessageID = id
	}
	if p, ok := obj["payload"].(map[string]interface{}); ok {
		env.Payload = p
	}

	r.port.Post(env)
	return goja.Undefined()
}

// onMessage registers the script's incoming-envelope handler,
// replacing any previous one.
func (r *Runtime) onMessage(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) == 0 {
		return goja.Undefined()
	}
	fn, ok := goja.AssertFunction(call.Arguments[0])
	if !ok {
		panic(r.vm.ToValue(fmt.Sprintf("glint.onMessage expects a function, got %s", call.Arguments[0])))
	}
	r.handler = fn
	return goja.Undefined()
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// exportValue converts goja value to Go value
func (r *Runtime) exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Close detaches the port listener and releases the VM.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unlisten != nil {
		r.unlisten()
		r.unlisten = nil
	}
	r.handler = nil
	r.vm = nil
	r.console = nil

	r.inboxMu.Lock()
	r.inbox = nil
	r.inboxMu.Unlock()
	return nil
}
