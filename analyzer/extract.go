package analyzer

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Elements whose text never reaches the reader.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Extract parses html and collects the facts every tool works from.
// Malformed markup is parsed best effort; Extract never fails.
func Extract(pageURL, rawHTML string) PageFacts {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return PageFacts{}
	}
	return extractDocument(pageURL, doc)
}

func extractDocument(pageURL string, doc *goquery.Document) PageFacts {
	facts := PageFacts{
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		H1Count: doc.Find("h1").Length(),
		H2Count: doc.Find("h2").Length(),
	}

	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		facts.MetaDescription = &content
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, _ := s.Attr("alt")
		facts.Images = append(facts.Images, Image{Src: src, Alt: alt})
	})

	base, _ := url.Parse(pageURL)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		facts.Links = append(facts.Links, Link{
			Href:     href,
			Text:     strings.TrimSpace(s.Text()),
			Internal: isInternal(base, href),
		})
	})

	facts.BodyText = strings.ToLower(strings.Join(strings.Fields(visibleText(doc.Find("body").First())), " "))
	return facts
}

// isInternal reports whether href stays on the origin of base.
// Root-relative and document-relative hrefs resolve to the same origin.
func isInternal(base *url.URL, href string) bool {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
		return true
	}
	if base == nil || base.Host == "" {
		return false
	}
	target, err := base.Parse(href)
	if err != nil {
		return false
	}
	return strings.EqualFold(target.Scheme, base.Scheme) && strings.EqualFold(target.Host, base.Host)
}

// Elements that start a new line when rendered.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// visibleText concatenates the text nodes under sel as they appear, skipping
// script-like elements. Inline markup never splits a word; block elements
// are separated by a space.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if hiddenElements[n.Data] {
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}
