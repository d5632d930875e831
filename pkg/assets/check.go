package assets

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CheckDocument verifies that an HTML document carries the import map marker exactly
// once, inside a <script type="importmap"> element.
func CheckDocument(content []byte, marker string) error {
	if marker == "" {
		return fmt.Errorf("marker is required")
	}
	if count := bytes.Count(content, []byte(marker)); count != 1 {
		return fmt.Errorf("expected marker %q exactly once, found %d", marker, count)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	found := false
	doc.Find(`script[type="importmap"]`).Each(func(_ int, sel *goquery.Selection) {
		if strings.Contains(sel.Text(), marker) {
			found = true
		}
	})
	if !found {
		return fmt.Errorf("marker %q is not inside a <script type=\"importmap\"> element", marker)
	}
	return nil
}
