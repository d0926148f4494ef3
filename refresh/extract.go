package refresh

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// SummaryID is the id of the subtree the summary view replaces.
const SummaryID = "summary-content"

// Extract returns the outer HTML of the element with the given id.
func Extract(doc, id string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}

	n := find(root, id)
	if n == nil {
		return "", fmt.Errorf("element #%s not found", id)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("render #%s: %w", id, err)
	}
	return buf.String(), nil
}

func find(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := find(c, id); m != nil {
			return m
		}
	}
	return nil
}

// SummaryFetcher wraps a raw fetch of the /summary page so that only the
// summary subtree is applied.
func SummaryFetcher(raw Fetcher) Fetcher {
	return func(ctx context.Context) (string, error) {
		doc, err := raw(ctx)
		if err != nil {
			return "", err
		}
		return Extract(doc, SummaryID)
	}
}
