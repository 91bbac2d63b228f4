package wiki

import "strings"

// Link is one wiki link occurrence. Display equals Target for the bare
// [PageName] form.
type Link struct {
	Display string
	Target  string
}

// ExtractLinks returns every wiki link in the content, in document order.
// Both [Display|Target] and [Target] forms are recognized. Directive tokens
// ([{...}]) are never returned. Links do not span lines.
func ExtractLinks(content string) []Link {
	var links []Link
	for _, line := range strings.Split(content, "\n") {
		for {
			open := strings.IndexByte(line, '[')
			if open < 0 {
				break
			}
			end := strings.IndexByte(line[open:], ']')
			if end < 0 {
				break
			}
			body := line[open+1 : open+end]
			line = line[open+end+1:]

			body = strings.TrimSpace(body)
			if body == "" || IsDirective(body) {
				continue
			}

			display, target, found := strings.Cut(body, "|")
			if !found {
				target = body
			}
			display = strings.TrimSpace(display)
			target = strings.TrimSpace(target)
			if target == "" {
				continue
			}
			if display == "" {
				display = target
			}
			links = append(links, Link{Display: display, Target: target})
		}
	}
	return links
}
