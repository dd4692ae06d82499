package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/yellowpages-leads/internal/normalize"
)

// strategy extracts one field from a listing container. matched reports
// whether the strategy's element exists; v is nil when the element exists but
// carries no usable value.
type strategy[T any] func(container *goquery.Selection) (v *T, matched bool)

// firstMatch applies the chain in order. The first strategy whose element
// exists decides the field, even when its value is nil.
func firstMatch[T any](container *goquery.Selection, chain []strategy[T]) *T {
	for _, extract := range chain {
		if v, matched := extract(container); matched {
			return v
		}
	}
	return nil
}

// textAt reads the cleaned text of the first element matching selector.
func textAt(selector string) strategy[string] {
	return func(container *goquery.Selection) (*string, bool) {
		el := container.Find(selector).First()
		if el.Length() == 0 {
			return nil, false
		}
		return normalize.CleanText(el.Text()), true
	}
}

// phoneAt is textAt passed through the phone normalizer.
func phoneAt(selector string) strategy[string] {
	return func(container *goquery.Selection) (*string, bool) {
		el := container.Find(selector).First()
		if el.Length() == 0 {
			return nil, false
		}
		return normalize.ParsePhone(el.Text()), true
	}
}

// hrefAt reads the cleaned href of the first anchor matching selector.
func hrefAt(selector string) strategy[string] {
	return func(container *goquery.Selection) (*string, bool) {
		el := container.Find(selector).First()
		if el.Length() == 0 {
			return nil, false
		}
		href, ok := el.Attr("href")
		if !ok {
			return nil, true
		}
		return normalize.CleanText(href), true
	}
}

// ratingAt parses the rating carried by the first element matching selector.
func ratingAt(selector string) strategy[float64] {
	return func(container *goquery.Selection) (*float64, bool) {
		el := container.Find(selector).First()
		if el.Length() == 0 {
			return nil, false
		}
		return normalize.ParseRating(el), true
	}
}

// mailtoAddress reads the address of the first mailto: anchor that carries
// one. The scheme is matched case-insensitively.
func mailtoAddress(container *goquery.Selection) (*string, bool) {
	var address *string
	container.Find(selectorAnchors).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if len(href) < len(mailtoScheme) || !strings.EqualFold(href[:len(mailtoScheme)], mailtoScheme) {
			return true
		}
		address = normalize.CleanText(href[len(mailtoScheme):])
		return address == nil
	})
	return address, address != nil
}
