package browser

import (
	"github.com/itsvic-dev/browser/treebuilder"
)

// config holds parser configuration.
type config struct {
	encoding               string
	fragmentContext        *treebuilder.FragmentContext
	iframeSrcdoc           bool
	strict                 bool
	collectErrors          bool
	scriptingEnabled       bool
	parserCannotChangeMode bool
	xmlCoercion            bool
}

// newConfig creates a new config with defaults and applies options.
func newConfig(opts ...Option) *config {
	cfg := &config{
		scriptingEnabled: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures the parser behavior.
type Option func(*config)

// WithEncoding sets the character encoding to use for parsing.
// This overrides automatic encoding detection.
//
// Common values: "utf-8", "windows-1252", "iso-8859-1"
func WithEncoding(enc string) Option {
	return func(c *config) {
		c.encoding = enc
	}
}

// WithFragment records an html-namespace fragment context in the config.
// Parse does not read it, and ParseFragment replaces it with a context
// built from its own context argument.
func WithFragment(tagName string) Option {
	return func(c *config) {
		c.fragmentContext = &treebuilder.FragmentContext{
			TagName:   tagName,
			Namespace: "html",
		}
	}
}

// WithFragmentNS records a fragment context with a specific namespace in
// the config. Parse does not read it, and ParseFragment replaces it with an
// html-namespace context built from its own context argument, so SVG and
// MathML contexts are not applied through either function.
func WithFragmentNS(tagName, namespace string) Option {
	return func(c *config) {
		c.fragmentContext = &treebuilder.FragmentContext{
			TagName:   tagName,
			Namespace: namespace,
		}
	}
}

// WithIframeSrcdoc enables iframe srcdoc parsing mode.
// In this mode, the parser treats the input as the srcdoc attribute value.
func WithIframeSrcdoc() Option {
	return func(c *config) {
		c.iframeSrcdoc = true
	}
}

// WithStrictMode enables strict parsing mode.
// In this mode, the first parse error causes Parse to return an error.
// By default, parse errors are handled according to the HTML5 spec
// and parsing continues.
func WithStrictMode() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithCollectErrors enables error collection mode.
// Parse errors are collected and returned as a ParseErrors error
// (which can be unwrapped to get individual errors).
// Without this option, parse errors are silently recovered from.
func WithCollectErrors() Option {
	return func(c *config) {
		c.collectErrors = true
	}
}

// WithXMLCoercion enables XML output coercions used by some conformance
// test suites: CR normalization and leading-hyphen handling in comments.
// Most callers never need this; it exists for html5lib-tests parity.
func WithXMLCoercion() Option {
	return func(c *config) {
		c.xmlCoercion = true
	}
}

// WithScriptingEnabled controls the HTML5 "scripting flag". It is enabled
// by default, matching a browser with JavaScript turned on: <noscript>
// content is treated as opaque raw text rather than parsed as markup.
// Disabling it parses <noscript> contents as regular child nodes instead,
// as a browser with scripting disabled would.
func WithScriptingEnabled(enabled bool) Option {
	return func(c *config) {
		c.scriptingEnabled = enabled
	}
}

// WithParserCannotChangeMode locks the document's quirks mode at whatever
// it was initialized to, ignoring any DOCTYPE the input supplies. This
// mirrors the HTML5 "parser cannot change the mode flag", used when a
// caller has already committed to a quirks mode for the document (for
// example, fragment parsing inherits its context's mode).
func WithParserCannotChangeMode(cannotChange bool) Option {
	return func(c *config) {
		c.parserCannotChangeMode = cannotChange
	}
}
