package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"city-scrapers-det/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("cityscrapers.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// CleanText extracts the joined text of a selection the way scrapy's
// `*::text` plus a whitespace cleanup would.
func CleanText(sel *goquery.Selection) string {
	parts := []string{}
	for _, n := range sel.Nodes {
		parts = append(parts, GetText(n))
	}
	return textutil.CleanWhitespace(strings.Join(parts, " "))
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors pulls (text, resolved href) pairs out of a selection of
// <a> nodes. `base` may be nil, in which case hrefs are left untouched.
func GetAnchors(ctx context.Context, base *url.URL, sel *goquery.Selection) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := GetText(n)
		name = textutil.RemoveNonPrintable(name)
		name = textutil.CleanWhitespace(name)

		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}
