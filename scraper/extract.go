package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"subito_scrooper/canonical"
	"subito_scrooper/models"
)

const (
	cardSelector  = `div[class*="item-card"]`
	specsSelector = `div[class*="BigCard-module_additional-info"]`
	priceSelector = `p[class*="price"]`
	soldSelector  = `span[class*="item-sold-badge"]`
	townSelector  = `span[class*="town"]`
	citySelector  = `span[class*="city"]`

	agencyLabel = "Agenzia"
)

var (
	ErrNoTitle        = errors.New("card has no title")
	ErrNoSpecs        = errors.New("card has no info panel")
	ErrNoPrice        = errors.New("card has no price")
	ErrPriceOnRequest = errors.New("price on request")
	ErrBadPrice       = errors.New("malformed price")
	ErrNoLocation     = errors.New("card has no location")
	ErrBadLocation    = errors.New("malformed location")
)

// "Quartu Sant'Elena (CA)"
var locationPattern = regexp.MustCompile(`^(.*\S)\s*\((\w{2})\)$`)

// Extract parses one search result page into listings, in page order.
// Every listing is stamped with the status found in sourceURL; a URL
// without a known status fails the whole page.
func Extract(html []byte, sourceURL string) ([]models.Listing, error) {
	status, err := canonical.Status(sourceURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var listings []models.Listing
	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		listing, err := extractCard(card, status, sourceURL)
		if err != nil {
			slog.Warn("skipping listing card", "url", sourceURL, "card", i, "error", err)
			return
		}
		listings = append(listings, listing)
	})

	return listings, nil
}

func extractCard(card *goquery.Selection, status, sourceURL string) (models.Listing, error) {
	title := card.Find("h2").First()
	if title.Length() == 0 {
		return models.Listing{}, ErrNoTitle
	}
	specs := card.Find(specsSelector).First()
	if specs.Length() == 0 {
		return models.Listing{}, ErrNoSpecs
	}

	l := models.NewListing(status, sourceURL)
	l.Title = strings.TrimSpace(title.Text())

	specs.Contents().Each(func(_ int, s *goquery.Selection) {
		token := strings.TrimSpace(s.Text())
		if token != "" {
			applySpec(&l, token)
		}
	})

	if price, err := cardPrice(card); err == nil {
		l.Price = models.Found(price)
	} else {
		slog.Debug("price not found", "title", l.Title, "error", err)
	}

	if href, ok := card.Find("a").First().Attr("href"); ok {
		l.Link = href
	} else {
		slog.Debug("link not found", "title", l.Title)
	}

	l.Sold = card.Find(soldSelector).Length() > 0

	if loc, err := cardLocation(card); err == nil {
		l.Location = models.Found(loc)
	} else {
		slog.Debug("location not found", "title", l.Title, "error", err)
	}

	l.IsRealEstateAgency = hasAgencyLabel(card)

	return l, nil
}

func applySpec(l *models.Listing, token string) {
	kind, value := ClassifySpec(token)
	switch kind {
	case SpecArea:
		l.MQ = models.Found(value)
	case SpecRooms:
		l.Rooms = models.Found(value)
	case SpecBathrooms:
		l.Bathrooms = models.Found(value)
	case SpecFloor:
		l.Floor = models.Found(value)
	default:
		slog.Debug("unknown spec", "spec", token, "title", l.Title)
	}
}

// cardPrice reads the price text. A price element whose first child is a
// tag holds a placeholder such as "Prezzo su richiesta".
func cardPrice(card *goquery.Selection) (int, error) {
	p := card.Find(priceSelector).First()
	if p.Length() == 0 {
		return 0, ErrNoPrice
	}
	first := p.Contents().First()
	if first.Length() == 0 {
		return 0, ErrNoPrice
	}
	if goquery.NodeName(first) != "#text" {
		return 0, ErrPriceOnRequest
	}
	return ParsePrice(first.Text())
}

// ParsePrice turns "145.000 €" or "145.000,00" into 145000.
func ParsePrice(raw string) (int, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ".", ""))
	runes := []rune(s)
	if len(runes) <= 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadPrice, raw)
	}
	s = strings.TrimRight(string(runes[:len(runes)-2]), " , ")

	price, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadPrice, raw, err)
	}
	return price, nil
}

func cardLocation(card *goquery.Selection) (models.Location, error) {
	town := card.Find(townSelector).First()
	city := card.Find(citySelector).First()
	if town.Length() == 0 || city.Length() == 0 {
		return models.Location{}, ErrNoLocation
	}
	return ParseLocation(town.Text() + city.Text())
}

// ParseLocation splits "Town (XX)" and resolves the province code.
// Any failure, including an unmapped code, fails city and province together.
func ParseLocation(raw string) (models.Location, error) {
	m := locationPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return models.Location{}, fmt.Errorf("%w: %q", ErrBadLocation, raw)
	}
	province, err := canonical.Province(m[2])
	if err != nil {
		return models.Location{}, err
	}
	return models.Location{City: m[1], Province: province}, nil
}

func hasAgencyLabel(card *goquery.Selection) bool {
	found := false
	card.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Text() == agencyLabel {
			found = true
			return false
		}
		return true
	})
	return found
}
