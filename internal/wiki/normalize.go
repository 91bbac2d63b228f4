package wiki

import (
	"regexp"
)

var (
	reMDHeading          = regexp.MustCompile(`(?m)^(#{1,6})\s+(.*)$`)
	reMDBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reMDBullet           = regexp.MustCompile(`(?m)^(\s*)[-+]\s+`)
	reMDItalicStar       = regexp.MustCompile(`\*([^*\s](?:[^*\n]*[^*\s])?)\*`)
	reMDItalicUnderscore = regexp.MustCompile(`(^|[^_\w])_([^_\s](?:[^_\n]*[^_\s])?)_($|[^_\w])`)
	reMDLink             = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)
	rePageName           = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
)

// NormalizeSyntax rewrites the markdown constructs models fall back to into
// the wiki dialect. Content already in wiki syntax passes through unchanged,
// so the conversion is safe to apply twice.
//
// Conversions: # / ## / ### headings to !!! / !! / ! (deeper levels clamp
// to !), **bold** to __bold__, *italic* and _italic_ to ''italic'',
// - and + bullets to *, and [text](PageName) to [text|PageName]. Markdown
// links to external URLs and bare URLs are left alone.
func NormalizeSyntax(content string) string {
	out := reMDHeading.ReplaceAllStringFunc(content, func(m string) string {
		sub := reMDHeading.FindStringSubmatch(m)
		switch len(sub[1]) {
		case 1:
			return "!!!" + sub[2]
		case 2:
			return "!!" + sub[2]
		default:
			return "!" + sub[2]
		}
	})

	// Markdown links first: [text](PageName) has no emphasis markers, but
	// converting early keeps later passes away from the (...) part.
	out = reMDLink.ReplaceAllStringFunc(out, func(m string) string {
		sub := reMDLink.FindStringSubmatch(m)
		if rePageName.MatchString(sub[2]) {
			return "[" + sub[1] + "|" + sub[2] + "]"
		}
		return m
	})

	// Bold before star italics so ** pairs are consumed as a unit, and both
	// before bullet conversion so the bullets this pass emits cannot be
	// mistaken for emphasis markers.
	out = reMDBold.ReplaceAllString(out, "__$1__")
	out = reMDItalicStar.ReplaceAllString(out, "''$1''")
	out = reMDItalicUnderscore.ReplaceAllString(out, "$1''$2''$3")
	out = reMDBullet.ReplaceAllString(out, "$1* ")

	return out
}
