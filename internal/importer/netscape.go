// Package importer reads bookmark exports into plain folder trees the
// bookmarks service can insert into the local tree.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var ErrNotBookmarkFile = errors.New("not a Netscape bookmark file")

// Node is one imported folder or bookmark.
type Node struct {
	Title    string
	URL      string
	IsFolder bool
	Children []*Node
}

// Count returns the number of nodes in n including n itself.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

type openFolder struct {
	node *Node
	// list is the <dl> element holding the folder content, nil until seen.
	list *html.Node
}

// ParseNetscape parses a Netscape bookmark file, the HTML format browsers
// use for bookmark exports, and returns its top-level nodes in document
// order. Folders come from <h3> headers followed by a <dl> list; bookmarks
// come from <a href> links.
func ParseNetscape(r io.Reader) ([]*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bookmark html: %w", err)
	}

	root := &Node{IsFolder: true}
	var stack []*openFolder
	sawList := false

	current := func() *Node {
		if len(stack) == 0 {
			return root
		}
		return stack[len(stack)-1].node
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h3":
				// A previous header that never got a list is an empty folder.
				if len(stack) > 0 && stack[len(stack)-1].list == nil {
					stack = stack[:len(stack)-1]
				}
				folder := &Node{Title: textContent(n), IsFolder: true}
				parent := current()
				parent.Children = append(parent.Children, folder)
				stack = append(stack, &openFolder{node: folder})
				return

			case "a":
				href := strings.TrimSpace(attr(n, "href"))
				if href == "" {
					return
				}
				parent := current()
				parent.Children = append(parent.Children, &Node{Title: textContent(n), URL: href})
				return

			case "dl":
				sawList = true
				if len(stack) > 0 && stack[len(stack)-1].list == nil {
					stack[len(stack)-1].list = n
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && n.Data == "dl" {
			if len(stack) > 0 && stack[len(stack)-1].list == n {
				stack = stack[:len(stack)-1]
			}
		}
	}
	walk(doc)

	if !sawList {
		return nil, ErrNotBookmarkFile
	}
	return root.Children, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
