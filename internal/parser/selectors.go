package parser

// Container selectors, tried in order until one matches.
var containerSelectors = []string{
	"div.search-results div.result",
	"div.result",
}

// Field selectors, listed by priority within each field.
const (
	selectorNameSpan       = "a.business-name span"
	selectorName           = "a.business-name"
	selectorCategoryLink   = "div.categories a"
	selectorCategories     = "div.categories"
	selectorStreetAddress  = "div.street-address"
	selectorLocality       = "div.locality"
	selectorPhones         = "div.phones"
	selectorPhoneLink      = "a.phone"
	selectorWebsiteDesktop = "a.track-visit-website"
	selectorWebsiteLink    = "a.website-link"
	selectorWebsiteMobile  = "a.track-visit-website-mobile"
	selectorResultRating   = "div.result-rating"
	selectorRatings        = "div.ratings"
	selectorAnchors        = "a[href]"
)

const mailtoScheme = "mailto:"
