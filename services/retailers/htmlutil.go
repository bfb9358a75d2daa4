package retailers

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Small structural helpers over x/net/html. Store search grids differ per
// retailer but all reduce to "find anchors/cards, read text, class-scoped
// price, img thumbnail".

func walkNodes(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, visit)
	}
}

// findAll collects every element node matching pred, in document order.
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	walkNodes(root, func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
	})
	return out
}

// findFirst returns the first element matching pred, or nil.
func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	nodes := findAll(root, pred)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// classContains reports whether any class token contains the given fragment.
func classContains(n *html.Node, fragment string) bool {
	return strings.Contains(attrVal(n, "class"), fragment)
}

// nodeText concatenates all text under n, whitespace-collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	walkNodes(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteString(" ")
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// ancestorOf climbs to the nearest ancestor with one of the given tags,
// the listing card that wraps a product link.
func ancestorOf(n *html.Node, tags ...string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		for _, tag := range tags {
			if p.Data == tag {
				return p
			}
		}
	}
	return nil
}

// resolveHref turns a possibly relative href into an absolute URL.
func resolveHref(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// thumbnailSrc reads an img's src (or lazy-loaded data-src) and fixes
// protocol-relative URLs.
func thumbnailSrc(img *html.Node) string {
	if img == nil {
		return ""
	}
	src := attrVal(img, "src")
	if src == "" {
		src = attrVal(img, "data-src")
	}
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	return src
}

// cardThumbnail finds the first image thumbnail inside a listing card.
func cardThumbnail(card *html.Node) string {
	if card == nil {
		return ""
	}
	return thumbnailSrc(findFirst(card, func(n *html.Node) bool { return n.Data == "img" }))
}

// cardPrice extracts a price from the first price-ish element inside a card.
// Boutique stores tag prices with classes like "price" or "money", or stash
// the raw value in a data-price attribute; absence is common and not an
// error.
func cardPrice(card *html.Node, classFragments ...string) *float64 {
	if card == nil {
		return nil
	}
	el := findFirst(card, func(n *html.Node) bool {
		if attrVal(n, "data-price") != "" {
			return true
		}
		for _, f := range classFragments {
			if classContains(n, f) {
				return true
			}
		}
		return false
	})
	if el == nil {
		return nil
	}
	if v := attrVal(el, "data-price"); v != "" {
		if p := extractPrice(v); p != nil {
			return p
		}
	}
	return extractPrice(nodeText(el))
}
