package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catalogscraper/pkg/models"
)

// Detail field keys
const (
	FieldTitleDetail = "title_detail"
	FieldCoverImage  = "dimage"
	FieldDescription = "description"
	FieldCountry     = "country"
	FieldGenre       = "genre"
	FieldReleased    = "released"
	FieldProduction  = "production"
	FieldCasts       = "casts"
)

var coverURL = regexp.MustCompile(`url\(["']?(.*?)["']?\)`)

// detailRows maps the position of each row in the info block to its list field
var detailRows = map[int]string{
	1: FieldCountry,
	2: FieldGenre,
	4: FieldProduction,
	5: FieldCasts,
}

const releasedRow = 3

// ParseDetail extracts the enrichment fields of a detail page. Missing
// elements yield empty strings and lists.
func ParseDetail(doc *goquery.Document) models.DetailRecord {
	d := models.DetailRecord{
		FieldTitleDetail: text(doc.Find(".heading-name a")),
		FieldCoverImage:  coverImage(doc.Find(".w_b-cover").First()),
		FieldDescription: text(doc.Find(".description")),
	}

	for pos, field := range detailRows {
		d[field] = linkTexts(doc.Find(rowSelector(pos) + " a"))
	}

	released := doc.Find(rowSelector(releasedRow)).First().Text()
	d[FieldReleased] = strings.TrimSpace(strings.ReplaceAll(released, "Released:", ""))

	return d
}

func rowSelector(pos int) string {
	return ".elements .row-line:nth-of-type(" + strconv.Itoa(pos) + ")"
}

func coverImage(s *goquery.Selection) string {
	style, ok := s.Attr("style")
	if !ok {
		return ""
	}
	m := coverURL.FindStringSubmatch(style)
	if m == nil {
		return ""
	}
	return m[1]
}

func linkTexts(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(_ int, a *goquery.Selection) {
		out = append(out, strings.TrimSpace(a.Text()))
	})
	return out
}
