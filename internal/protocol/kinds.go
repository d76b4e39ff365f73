package protocol

import "strings"

// Wire type strings. Case-sensitive, fixed by the protocol.
const (
	TypeTool   = "tool"
	TypePrompt = "prompt"
	TypeIntent = "intent"
	TypeNotify = "notify"
	TypeLink   = "link"

	TypeSizeChange        = "ui-size-change"
	TypeRequestRenderData = "ui-request-render-data"
	TypeIframeReady       = "ui-lifecycle-iframe-ready"
	TypeRequestData       = "ui-request-data"
	TypeRenderData        = "ui-lifecycle-iframe-render-data"
	TypeMessageReceived   = "ui-message-received"
	TypeMessageResponse   = "ui-message-response"
	TypeProxyReady        = "ui-proxy-iframe-ready"
	TypeHTMLContent       = "ui-html-content"
)

// lifecyclePrefix marks lifecycle traffic; any "ui-*" type belongs to the
// protocol even if this build does not know the specific discriminant.
const lifecyclePrefix = "ui-"

// Kind is the decoded discriminant of a protocol message. KindUnknown is
// an explicit variant: it means "not ours", never an error.
type Kind int

const (
	KindUnknown Kind = iota

	KindTool
	KindPrompt
	KindIntent
	KindNotify
	KindLink

	KindSizeChange
	KindRequestRenderData
	KindIframeReady
	KindRequestData
	KindRenderData
	KindMessageReceived
	KindMessageResponse
	KindProxyReady
	KindHTMLContent

	// KindLifecycleOther covers "ui-*" types this build has no handler
	// for. Still protocol traffic: logged and ignored, never forwarded.
	KindLifecycleOther
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindTool:              TypeTool,
	KindPrompt:            TypePrompt,
	KindIntent:            TypeIntent,
	KindNotify:            TypeNotify,
	KindLink:              TypeLink,
	KindSizeChange:        TypeSizeChange,
	KindRequestRenderData: TypeRequestRenderData,
	KindIframeReady:       TypeIframeReady,
	KindRequestData:       TypeRequestData,
	KindRenderData:        TypeRenderData,
	KindMessageReceived:   TypeMessageReceived,
	KindMessageResponse:   TypeMessageResponse,
	KindProxyReady:        TypeProxyReady,
	KindHTMLContent:       TypeHTMLContent,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsAction reports whether k is one of the five correlated action kinds.
func (k Kind) IsAction() bool {
	switch k {
	case KindTool, KindPrompt, KindIntent, KindNotify, KindLink:
		return true
	}
	return false
}

// IsLifecycle reports whether k is lifecycle traffic.
func (k Kind) IsLifecycle() bool {
	return k != KindUnknown && !k.IsAction()
}

// IsProtocol reports whether k belongs to the protocol at all.
func (k Kind) IsProtocol() bool {
	return k != KindUnknown
}

// KindOf decodes a wire type string into its Kind.
func KindOf(wireType string) Kind {
	switch wireType {
	case TypeTool:
		return KindTool
	case TypePrompt:
		return KindPrompt
	case TypeIntent:
		return KindIntent
	case TypeNotify:
		return KindNotify
	case TypeLink:
		return KindLink
	case TypeSizeChange:
		return KindSizeChange
	case TypeRequestRenderData:
		return KindRequestRenderData
	case TypeIframeReady:
		return KindIframeReady
	case TypeRequestData:
		return KindRequestData
	case TypeRenderData:
		return KindRenderData
	case TypeMessageReceived:
		return KindMessageReceived
	case TypeMessageResponse:
		return KindMessageResponse
	case TypeProxyReady:
		return KindProxyReady
	case TypeHTMLContent:
		return KindHTMLContent
	}
	if strings.HasPrefix(wireType, lifecyclePrefix) {
		return KindLifecycleOther
	}
	return KindUnknown
}
