package style

// uaDisplay holds user-agent stylesheet display values. Tags not listed use
// the CSS initial value, inline.
var uaDisplay = map[string]string{
	// hidden
	"head": "none", "script": "none", "style": "none", "template": "none",
	"title": "none", "meta": "none", "link": "none", "base": "none",
	"noscript": "none", "datalist": "none", "area": "none", "param": "none",

	// block
	"html": "block", "body": "block", "address": "block", "article": "block",
	"aside": "block", "blockquote": "block", "center": "block", "details": "block",
	"dialog": "block", "dd": "block", "div": "block", "dl": "block", "dt": "block",
	"fieldset": "block", "figcaption": "block", "figure": "block", "footer": "block",
	"form": "block", "h1": "block", "h2": "block", "h3": "block", "h4": "block",
	"h5": "block", "h6": "block", "header": "block", "hgroup": "block", "hr": "block",
	"legend": "block", "main": "block", "menu": "block", "nav": "block", "ol": "block",
	"p": "block", "pre": "block", "section": "block", "summary": "block", "ul": "block",
	"optgroup": "block", "option": "block", "frameset": "block", "frame": "block",

	"li": "list-item",

	// tables
	"table": "table", "caption": "table-caption", "colgroup": "table-column-group",
	"col": "table-column", "thead": "table-header-group", "tbody": "table-row-group",
	"tfoot": "table-footer-group", "tr": "table-row", "td": "table-cell", "th": "table-cell",

	// replaced and form controls
	"input": "inline-block", "textarea": "inline-block", "select": "inline-block",
	"button": "inline-block", "img": "inline-block", "iframe": "inline-block",
	"video": "inline-block", "canvas": "inline-block", "meter": "inline-block",
	"progress": "inline-block", "marquee": "inline-block",

	// ruby
	"ruby": "ruby", "rt": "ruby-text", "rp": "none",
}

// DefaultDisplay returns the user-agent display value for a tag name
func DefaultDisplay(tag string) string {
	if tag == "" {
		return ""
	}
	if d, ok := uaDisplay[tag]; ok {
		return d
	}
	return "inline"
}
