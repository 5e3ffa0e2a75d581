package detect

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/probe"
	"github.com/scandeck/scandeck/pkg/regexcache"
)

// DOM sink call patterns. A sink match alone is not reported; the same
// script text must also reference a user-controllable source.
var domSinkPatterns = []*regexp.Regexp{
	regexcache.MustGet(`document\.write(ln)?\s*\(`),
	regexcache.MustGet(`\.innerHTML\s*=`),
	regexcache.MustGet(`\.outerHTML\s*=`),
	regexcache.MustGet(`\.insertAdjacentHTML\s*\(`),
	regexcache.MustGet(`\beval\s*\(`),
	regexcache.MustGet(`setTimeout\s*\(`),
	regexcache.MustGet(`setInterval\s*\(`),
	regexcache.MustGet(`location\s*=`),
	regexcache.MustGet(`location\.(assign|replace)\s*\(`),
	regexcache.MustGet(`location\.(hash|search)\s*=`),
	regexcache.MustGet(`document\.cookie\s*=`),
	regexcache.MustGet(`\$\s*\(`),
	regexcache.MustGet(`\.src\s*=`),
}

// User-controllable source references.
var domSourcePatterns = []*regexp.Regexp{
	regexcache.MustGet(`location\.hash`),
	regexcache.MustGet(`location\.search`),
	regexcache.MustGet(`document\.URL`),
}

// ScriptTexts extracts the text content of every <script> element in body.
// x/net/html parses lenient HTML, so malformed markup still yields whatever
// scripts were recoverable.
func ScriptTexts(body string) []string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}
	var scripts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			var text strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					text.WriteString(c.Data)
				}
			}
			if s := text.String(); strings.TrimSpace(s) != "" {
				scripts = append(scripts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return scripts
}

// DOMSinkDetector statically scans inline scripts of the baseline page for
// DOM XSS sink calls paired with a user-controllable source in the same
// script. This is structural signal, not payload-driven, so findings carry
// no payload.
type DOMSinkDetector struct{}

// Detect inspects the baseline capture and returns at most one medium
// finding per script that pairs a sink with a source.
func (DOMSinkDetector) Detect(capture *probe.Capture) []finding.Finding {
	if capture == nil {
		return nil
	}
	var out []finding.Finding
	for i, script := range ScriptTexts(capture.Body) {
		source := firstMatch(domSourcePatterns, script)
		if source == "" {
			continue // sink-without-source is not reported
		}
		sink := firstMatch(domSinkPatterns, script)
		if sink == "" {
			continue
		}
		out = append(out, finding.New(finding.DOMXSS,
			fmt.Sprintf("inline script #%d", i+1), finding.Medium,
			fmt.Sprintf("DOM sink %q reachable from user-controllable source %q", strings.TrimSpace(sink), source), ""))
	}
	return out
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}
