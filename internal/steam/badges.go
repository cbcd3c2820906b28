package steam

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

func fallbackBadgeName(badgeID int) string {
	return fmt.Sprintf("Badge %d", badgeID)
}

// parseBadgePage pulls the badge title and icon out of a community badge page.
func parseBadgePage(page []byte, badgeID int) (models.BadgeInfo, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return models.BadgeInfo{}, fmt.Errorf("failed to parse badge page: %w", err)
	}

	info := models.BadgeInfo{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "div" && info.Name == "" && hasClass(n, "badge_info_title"):
				info.Name = strings.TrimSpace(textContent(n))
			case n.Data == "img" && info.Image == "" && hasClass(n, "badge_icon"):
				info.Image = attr(n, "src")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if info.Name == "" {
		info.Name = fallbackBadgeName(badgeID)
	}
	return info, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
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
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return b.String()
}
