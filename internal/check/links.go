// Package check validates a combined guide and the files around it.
package check

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Problem is a single finding.
type Problem struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	if p.File == "" {
		return p.Message
	}
	return p.File + ": " + p.Message
}

// DeadLinks returns the fragment targets of in-document links that no
// anchor name or element id declares, sorted and without duplicates.
func DeadLinks(doc io.Reader) ([]string, error) {
	d, err := goquery.NewDocumentFromReader(doc)
	if err != nil {
		return nil, fmt.Errorf("parse combined document: %w", err)
	}

	declared := make(map[string]bool)
	d.Find("a[name]").Each(func(_ int, s *goquery.Selection) {
		declared[s.AttrOr("name", "")] = true
	})
	d.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		declared[s.AttrOr("id", "")] = true
	})

	missing := make(map[string]bool)
	d.Find(`a[href^="#"]`).Each(func(_ int, s *goquery.Selection) {
		target := strings.TrimPrefix(s.AttrOr("href", ""), "#")
		if target != "" && !declared[target] {
			missing[target] = true
		}
	})

	out := make([]string, 0, len(missing))
	for t := range missing {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}
