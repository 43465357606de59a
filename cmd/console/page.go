package main

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Link struct {
	Href  string
	Label string
}

// PageView is what the console shows of a page served by the game.
type PageView struct {
	URL        string
	Path       string
	Title      string
	Place      string
	Paragraphs []string
	Links      []Link
	Ending     bool
}

// parsePage extracts the heading, story text and links from a game page.
func parsePage(r io.Reader) (*PageView, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	page := &PageView{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Body:
				page.Place = attr(n, "data-place")
				page.Ending = hasClass(n, "ending")
			case atom.H1:
				if page.Title == "" {
					page.Title = textContent(n)
				}
				return
			case atom.P:
				if text := textContent(n); text != "" {
					page.Paragraphs = append(page.Paragraphs, text)
				}
				return
			case atom.A:
				if href := attr(n, "href"); href != "" {
					page.Links = append(page.Links, Link{Href: href, Label: textContent(n)})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return page, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
