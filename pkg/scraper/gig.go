package scraper

import (
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// parseScriptOutput reads the JSON the scraper script prints. The script already
// uses the normalized key names, but ids and counts may come back as numbers.
func parseScriptOutput(raw string) (*Gig, error) {
	raw = strings.TrimSpace(raw)
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return nil, &OutputError{Raw: raw, Reason: "not a JSON object"}
	}
	res := gjson.Parse(raw)
	if e := res.Get("error"); e.Exists() {
		return nil, &OutputError{Raw: raw, Reason: e.String() + ": " + res.Get("details").String()}
	}
	gig := &Gig{
		ID:          res.Get("id").String(),
		Title:       res.Get("title").String(),
		Description: res.Get("description").String(),
		SellerName:  res.Get("seller_name").String(),
		SellerURL:   res.Get("seller_url").String(),
		Price:       res.Get("price").String(),
	}
	gig.Rating = floatOrNil(res.Get("rating"))
	gig.ReviewsCount = intOrNil(res.Get("reviews_count"))
	return gig, nil
}

// parseProps maps the page's perseus initial props to a Gig, trying the same
// alternative key names the script does.
func parseProps(props string) (*Gig, error) {
	if !gjson.Valid(props) {
		return nil, &OutputError{Raw: props, Reason: "props are not valid JSON"}
	}
	res := gjson.Parse(props)
	first := func(paths ...string) gjson.Result {
		for _, p := range paths {
			if v := res.Get(p); v.Exists() && v.Type != gjson.Null && v.String() != "" {
				return v
			}
		}
		return gjson.Result{}
	}

	gig := &Gig{
		ID:          first("id", "gigId").String(),
		Title:       first("title", "gigTitle").String(),
		Description: first("description", "gigDescription").String(),
	}

	seller := first("seller", "profileUser")
	if seller.IsObject() {
		if name := seller.Get("username").String(); name != "" {
			gig.SellerName = name
			gig.SellerURL = BaseFiverrURL + "/" + name
		}
	}

	pricing := first("pricing", "gigPackages")
	if basic := pricing.Get("basic"); basic.IsObject() {
		currency := basic.Get("currency").String()
		if currency == "" {
			currency = "$"
		}
		gig.Price = currency + basic.Get("price").String()
	} else if p := res.Get("price"); p.Exists() {
		gig.Price = p.String()
	}

	gig.Rating = floatOrNil(res.Get("rating"))
	gig.ReviewsCount = intOrNil(first("reviewsCount", "ratingCount"))

	if *gig == (Gig{}) {
		return nil, ErrNoData
	}
	return gig, nil
}

func floatOrNil(v gjson.Result) *float64 {
	if v.Type != gjson.Number {
		return nil
	}
	return lo.ToPtr(v.Float())
}

func intOrNil(v gjson.Result) *int64 {
	if v.Type != gjson.Number {
		return nil
	}
	return lo.ToPtr(v.Int())
}
