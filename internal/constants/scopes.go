package constants

// Scope terminators for the tree builder.
//
// hasElementInScope walks the open-elements stack from the top down and
// stops at the first element whose tag is in the relevant terminator set
// below; "in scope" means the target was found before a terminator was.
// The default, list item and button scopes share almost all of their
// terminator set, differing only by the handful of extra tags each one
// adds on top, so they're built from a common base instead of three
// independent literals that would drift if the shared part ever
// needed a correction.

// commonScopeTerminators are shared by the default, list item, and button
// scopes: the HTML elements that always terminate a scope lookup, plus the
// MathML/SVG "scope marker" elements the integration point rules add.
var commonScopeTerminators = []string{
	"applet", "caption", "html", "table", "td", "th", "marquee", "object", "template",
	// MathML text integration points
	"mi", "mo", "mn", "ms", "mtext", "annotation-xml",
	// SVG elements that behave like integration points for scope purposes
	"foreignObject", "desc", "title",
}

func scopeSet(extra ...string) map[string]bool {
	set := make(map[string]bool, len(commonScopeTerminators)+len(extra))
	for _, tag := range commonScopeTerminators {
		set[tag] = true
	}
	for _, tag := range extra {
		set[tag] = true
	}
	return set
}

// DefaultScope elements terminate the default scope.
var DefaultScope = scopeSet()

// ListItemScope elements terminate list item scope: the default scope
// terminators plus ol/ul, so an <li> can't escape an enclosing list.
var ListItemScope = scopeSet("ol", "ul")

// ButtonScope elements terminate button scope: the default scope
// terminators plus button itself.
var ButtonScope = scopeSet("button")

// TableScope elements terminate table scope. Table scope is deliberately
// narrow: only html/table/template bound a table-related lookup, since
// table scope is used to find enclosing tables, not arbitrary containers.
var TableScope = map[string]bool{
	"html":     true,
	"table":    true,
	"template": true,
}

// TableBodyScope elements terminate table body scope.
var TableBodyScope = withTags(TableScope, "tbody", "tfoot", "thead")

// TableRowScope elements terminate table row scope.
var TableRowScope = withTags(TableBodyScope, "tr")

func withTags(base map[string]bool, extra ...string) map[string]bool {
	set := make(map[string]bool, len(base)+len(extra))
	for tag := range base {
		set[tag] = true
	}
	for _, tag := range extra {
		set[tag] = true
	}
	return set
}

// SelectScope elements are NOT scope terminators for select (everything except these).
var SelectScope = map[string]bool{
	"optgroup": true,
	"option":   true,
}
