package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/glintui/glint/backend/internal/frame"
	"github.com/glintui/glint/backend/internal/protocol"
)

func TestRuntimeExecution(t *testing.T) {
	runtime, err := New(nil, DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	defer runtime.Close()

	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{
			name:    "simple return",
			script:  "42",
			wantErr: false,
		},
		{
			name:    "console log",
			script:  "console.log('hello'); 'test'",
			wantErr: false,
		},
		{
			name:    "math operations",
			script:  "Math.sqrt(16)",
			wantErr: false,
		},
		{
			name:    "syntax error",
			script:  "function {",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			result, err := runtime.Execute(ctx, tt.script)

			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && result == nil {
				t.Error("Execute() returned nil result")
			}
		})
	}
}

func TestRuntimeSecurity(t *testing.T) {
	runtime, err := New(nil, DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	defer runtime.Close()

	dangerousScripts := []struct {
		name   string
		script string
	}{
		{
			name:   "require blocked",
			script: "require('fs')",
		},
		{
			name:   "process blocked",
			script: "process.exit(1)",
		},
	}

	for _, tt := range dangerousScripts {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runtime.Execute(context.Background(), tt.script); err == nil {
				t.Errorf("dangerous script should fail: %s", tt.script)
			}
		})
	}
}

func TestRuntimeTimeout(t *testing.T) {
	config := DefaultConfig()
	config.Timeout = 50 * time.Millisecond

	runtime, err := New(nil, config)
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	defer runtime.Close()

	if _, err := runtime.Execute(context.Background(), "while (true) {}"); err == nil {
		t.Error("infinite loop should be interrupted")
	}
}

func TestConsoleCapture(t *testing.T) {
	runtime, err := New(nil, DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	defer runtime.Close()

	result, err := runtime.Execute(context.Background(), "console.log('a', 1); console.warn('b')")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(result.Console) != 2 {
		t.Fatalf("expected 2 console entries, got %d", len(result.Console))
	}
	if result.Console[0].Message != "a 1" {
		t.Errorf("expected 'a 1', got %q", result.Console[0].Message)
	}
	if result.Console[1].Level != "warn" {
		t.Errorf("expected warn level, got %s", result.Console[1].Level)
	}
}

func TestPostMessageSendsEnvelope(t *testing.T) {
	content, host := frame.Pair()

	runtime, err := New(content, DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	defer runtime.Close()

	var got []protocol.Envelope
	host.Listen(func(msg frame.Message) {
		got = append(got, msg.Env)
	})

	script := `
		glint.postMessage({type: "notify", messageId: "msg_1", payload: {message: "saved"}});
		glint.postMessage({noType: true});
		glint.postMessage("not an object");
	`
	if _, err := runtime.Execute(context.Background(), script); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(got))
	}
	if got[0].Type != "notify" || got[0].MessageID != "msg_1" {
		t.Errorf("unexpected envelope: %+v", got[0])
	}
	if got[0].String("message") != "saved" {
		t.Errorf("payload lost: %+v", got[0].Payload)
	}
}

func TestOnMessageReceivesDeliveries(t *testing.T) {
	content, host := frame.Pair()

	runtime, err := New(content, DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	defer runtime.Close()

	script := `
		var seen = [];
		glint.onMessage(function(msg) { seen.push(msg.type); });
	`
	if _, err := runtime.Execute(context.Background(), script); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	host.Post(protocol.Ack("msg_1"))
	host.Post(protocol.Response("msg_1", map[string]any{"ok": true}))

	result, err := runtime.Execute(context.Background(), "seen.join(',')")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Value != "ui-message-received,ui-message-response" {
		t.Errorf("unexpected handler log: %v", result.Value)
	}
}

func TestMidScriptDeliveriesDrainInOrder(t *testing.T) {
	content, host := frame.Pair()

	runtime, err := New(content, DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	defer runtime.Close()

	// Echo every content message back synchronously. Replies land
	// while the script still runs and must queue, not deadlock.
	host.Listen(func(msg frame.Message) {
		host.Post(protocol.Ack(msg.Env.MessageID))
	})

	script := `
		var acks = [];
		glint.onMessage(function(msg) { acks.push(msg.messageId); });
		glint.postMessage({type: "tool", messageId: "msg_a", payload: {toolName: "x"}});
		glint.postMessage({type: "tool", messageId: "msg_b", payload: {toolName: "y"}});
	`
	if _, err := runtime.Execute(context.Background(), script); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	result, err := runtime.Execute(context.Background(), "acks.join(',')")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Value != "msg_a,msg_b" {
		t.Errorf("expected acks in send order, got %v", result.Value)
	}
}

func TestCloseDetachesPort(t *testing.T) {
	content, host := frame.Pair()

	runtime, err := New(content, DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}

	if _, err := runtime.Execute(context.Background(), "glint.onMessage(function() {})"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	runtime.Close()

	// Must not panic into a released VM.
	host.Post(protocol.Ack("msg_1"))
}
