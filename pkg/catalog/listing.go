package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catalogscraper/pkg/models"
)

// Listing card selectors
const (
	cardSelector     = ".flw-item"
	titleSelector    = ".film-name a"
	posterSelector   = "img.film-poster-img"
	qualitySelector  = ".film-poster-quality"
	typeSelector     = ".fdi-type"
	infoSelector     = ".fdi-item"
	durationSelector = ".fdi-duration"
)

// seasonMarker appears in the first info item of series cards
const seasonMarker = "SS"

// ParseListing extracts one candidate per catalog card. An empty result means
// the listing has no more entries.
func ParseListing(doc *goquery.Document, endpoints Endpoints, metrics MetricSource) []models.CandidateRecord {
	if metrics == nil {
		metrics = RandomMetrics
	}

	cards := doc.Find(cardSelector)
	candidates := make([]models.CandidateRecord, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		candidates = append(candidates, parseCard(card, endpoints, metrics))
	})
	return candidates
}

func parseCard(card *goquery.Selection, endpoints Endpoints, metrics MetricSource) models.CandidateRecord {
	c := models.CandidateRecord{}

	if title := card.Find(titleSelector).First(); title.Length() > 0 {
		c.Title = strings.TrimSpace(title.Text())
		c.URL = endpoints.ResolveLocator(title.AttrOr("href", ""))
	}

	c.Image = card.Find(posterSelector).First().AttrOr("data-src", "")
	c.Quality = text(card.Find(qualitySelector))
	c.Type = text(card.Find(typeSelector))
	c.Duration = text(card.Find(durationSelector))

	info := card.Find(infoSelector)
	first := strings.TrimSpace(info.Eq(0).Text())
	if !strings.Contains(first, seasonMarker) {
		c.Year = first
	}
	if c.IsSeries() {
		c.Season = first
		c.Episode = strings.TrimSpace(info.Eq(1).Text())
	}

	c.Score = metrics(MaxScore + 1)
	c.Like = metrics(MaxLike + 1)
	c.Dislike = metrics(MaxDislike + 1)

	return c
}

// text returns the trimmed text of the first node in s
func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}
