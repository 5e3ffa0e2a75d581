package detect

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/probe"
)

// freeTextTypes are the input types treated as free-text surfaces. An input
// with no type attribute defaults to "text" per the HTML spec.
var freeTextTypes = map[string]bool{
	"":       true,
	"text":   true,
	"search": true,
	"email":  true,
	"url":    true,
}

// StoredFormDetector flags forms whose free-text inputs could persist
// attacker-controlled content. This is a structural heuristic over the
// baseline page only; no payload is ever sent.
type StoredFormDetector struct{}

// Detect parses the baseline capture and returns one medium-severity
// "potentially stored" finding per form containing a free-text input or
// textarea.
func (StoredFormDetector) Detect(capture *probe.Capture) []finding.Finding {
	if capture == nil {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(capture.Body))
	if err != nil {
		return nil
	}

	var out []finding.Finding
	formIndex := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "form" {
			formIndex++
			if field := freeTextField(n); field != "" {
				location := formLocation(n, formIndex)
				out = append(out, finding.New(finding.PotentialStoredXSS, location, finding.Medium,
					fmt.Sprintf("form accepts free-text input via %s; stored content may be rendered unsanitized", field), ""))
			}
			// Nested forms are invalid HTML; the parser flattens them, so
			// descending further inside a form is unnecessary.
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// freeTextField returns a description of the first free-text field inside
// the form node, or "".
func freeTextField(form *html.Node) string {
	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "textarea":
				found = "textarea " + nameAttr(n)
				return
			case "input":
				if freeTextTypes[strings.ToLower(attr(n, "type"))] {
					found = "input " + nameAttr(n)
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(form)
	return strings.TrimSpace(found)
}

func formLocation(form *html.Node, index int) string {
	if action := attr(form, "action"); action != "" {
		return fmt.Sprintf("form[action=%s]", action)
	}
	return fmt.Sprintf("form #%d", index)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nameAttr(n *html.Node) string {
	if name := attr(n, "name"); name != "" {
		return fmt.Sprintf("%q", name)
	}
	return "(unnamed)"
}
