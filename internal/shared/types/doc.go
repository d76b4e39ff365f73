// Package types holds shared domain types: tool service definitions
// used by the provider registry and the widget/resource model served to
// embedded content hosts.
package types
