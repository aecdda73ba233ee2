package check

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// ValidateTOC reports every element of a table-of-contents page that carries
// name, id and href attributes whose three values are not identical.
func ValidateTOC(r io.Reader, file string) ([]Problem, error) {
	d, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	var problems []Problem
	d.Find("[name][id][href]").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		id := s.AttrOr("id", "")
		href := s.AttrOr("href", "")
		if name != id || name != href {
			problems = append(problems, Problem{
				File:    file,
				Message: fmt.Sprintf("mismatched name/id/href for %s (id=%q href=%q)", name, id, href),
			})
		}
	})
	return problems, nil
}
