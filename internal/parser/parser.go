// Package parser extracts leads from a directory search results page.
//
// Listing markup differs between layout variants of the site, so every field
// is read through an ordered chain of selectors. The first selector that
// matches an element decides the field; an empty element leaves it unset. Only the business name is mandatory: a container
// without one is treated as an advertisement and dropped.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/yellowpages-leads/internal/leads"
	"github.com/JakeFAU/yellowpages-leads/internal/metrics"
	"github.com/JakeFAU/yellowpages-leads/internal/normalize"
)

// Rejection reasons reported to metrics.
const (
	rejectMissingName = "missing_name"
	rejectPanic       = "panic"
)

type fieldChains struct {
	businessName []strategy[string]
	category     []strategy[string]
	address      []strategy[string]
	locality     []strategy[string]
	phone        []strategy[string]
	website      []strategy[string]
	email        []strategy[string]
	rating       []strategy[float64]
}

func defaultChains() fieldChains {
	return fieldChains{
		businessName: []strategy[string]{textAt(selectorNameSpan), textAt(selectorName)},
		category:     []strategy[string]{textAt(selectorCategoryLink), textAt(selectorCategories)},
		address:      []strategy[string]{textAt(selectorStreetAddress)},
		locality:     []strategy[string]{textAt(selectorLocality)},
		phone:        []strategy[string]{phoneAt(selectorPhones), phoneAt(selectorPhoneLink)},
		website: []strategy[string]{
			hrefAt(selectorWebsiteDesktop),
			hrefAt(selectorWebsiteLink),
			hrefAt(selectorWebsiteMobile),
		},
		email:  []strategy[string]{mailtoAddress},
		rating: []strategy[float64]{ratingAt(selectorResultRating), ratingAt(selectorRatings)},
	}
}

// Parser turns result page HTML into leads.
type Parser struct {
	chains fieldChains
	logger *zap.Logger
}

// New returns a Parser using the default selector chains.
func New(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		chains: defaultChains(),
		logger: logger,
	}
}

// ParsePage returns the leads on the page in document order. A page without
// listing containers yields an empty slice.
func (p *Parser) ParsePage(html string) []leads.Lead {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logger.Error("Failed to parse page HTML", zap.Error(err))
		return []leads.Lead{}
	}

	containers := findContainers(doc)
	p.logger.Debug("Found potential result containers", zap.Int("count", containers.Length()))

	out := make([]leads.Lead, 0, containers.Length())
	containers.Each(func(i int, container *goquery.Selection) {
		if lead, ok := p.parseContainer(i, container); ok {
			out = append(out, lead)
		}
	})
	return out
}

func findContainers(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	for _, sel := range containerSelectors {
		found = doc.Find(sel)
		if found.Length() > 0 {
			return found
		}
	}
	return found
}

// parseContainer extracts one lead. A panic inside any strategy only costs
// this container.
func (p *Parser) parseContainer(index int, container *goquery.Selection) (lead leads.Lead, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Failed to parse a result container",
				zap.Int("index", index),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			metrics.ObserveRejectedContainer(rejectPanic)
			lead, ok = leads.Lead{}, false
		}
	}()

	name := firstMatch(container, p.chains.businessName)
	if name == nil {
		metrics.ObserveRejectedContainer(rejectMissingName)
		return leads.Lead{}, false
	}

	locality := normalize.Locality{}
	if raw := firstMatch(container, p.chains.locality); raw != nil {
		locality = normalize.ParseLocality(*raw)
	}

	return leads.Lead{
		BusinessName: *name,
		Category:     firstMatch(container, p.chains.category),
		Address:      firstMatch(container, p.chains.address),
		City:         locality.City,
		State:        locality.State,
		ZipCode:      locality.ZipCode,
		PhoneNumber:  firstMatch(container, p.chains.phone),
		Email:        firstMatch(container, p.chains.email),
		Website:      firstMatch(container, p.chains.website),
		Rating:       firstMatch(container, p.chains.rating),
	}, true
}
