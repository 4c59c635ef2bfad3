package visir

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"visir-watcher/models"
)

const (
	cardLinkSelector     = "a.js-property-link[href]"
	cardAddressSelector  = "div.estate__item-title"
	cardPriceSelector    = "div.estate__price"
	cardSizeSelector     = "div.estate__parameters--1"
	cardRoomsSelector    = "div.estate__parameters--2"
	cardBedroomsSelector = "div.estate__parameters--4"
)

// extractCards parses all listing cards out of a rendered results page. A
// card missing any sub-field keeps the card with that field left empty; the
// normalizer turns empties into the "N/A" sentinel.
func extractCards(html, baseURL string) ([]models.RawCard, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var cards []models.RawCard
	doc.Find("div").FilterFunction(isListingCard).Each(func(_ int, sel *goquery.Selection) {
		card := models.RawCard{
			Address:    cardText(sel, cardAddressSelector),
			Price:      cardText(sel, cardPriceSelector),
			Size:       cardText(sel, cardSizeSelector),
			TotalRooms: cardText(sel, cardRoomsSelector),
			Bedrooms:   cardText(sel, cardBedroomsSelector),
		}

		if href, ok := sel.Find(cardLinkSelector).First().Attr("href"); ok {
			card.Link = absoluteURL(baseURL, href)
		}

		img := sel.Find("img").First()
		if src, ok := img.Attr("src"); ok && src != "" {
			card.ImageURL = absoluteURL(baseURL, src)
		} else if src, ok := img.Attr("data-src"); ok && src != "" {
			card.ImageURL = absoluteURL(baseURL, src)
		}

		cards = append(cards, card)
	})

	return cards, nil
}

// isListingCard matches the card wrapper (class token "estate__item",
// possibly with BEM modifiers) without also matching its "estate__item-*"
// children.
func isListingCard(_ int, sel *goquery.Selection) bool {
	class, ok := sel.Attr("class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(class) {
		if token == "estate__item" || strings.HasPrefix(token, "estate__item--") {
			return true
		}
	}
	return false
}

// cardText returns the trimmed text of the first match inside the card,
// with internal runs of whitespace collapsed.
func cardText(sel *goquery.Selection, selector string) string {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(found.Text()), " ")
}

// absoluteURL resolves href against the site base, so relative card links
// become absolute identity keys.
func absoluteURL(base, href string) string {
	baseParsed, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return baseParsed.ResolveReference(ref).String()
}
