package carriers

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// KyungdongCarrierID is the carrier code for Kyungdong Express (경동택배)
const KyungdongCarrierID = "kdexp"

const kyungdongTrackingURL = "https://kdexp.com/service/delivery/basic.do"

// All kdexp timestamps are Korea Standard Time; the page itself carries no
// zone information.
var kstZone = time.FixedZone("KST", 9*60*60)

// Selectors for the kdexp tracking page. The markup has no stable field
// identifiers for the parties, only label text next to a name element, so
// party extraction goes through findByLabel below.
const (
	selErrorMessage  = "div.tracking-error"
	selResult        = "div.tracking-result"
	selPartyLabel    = "span.label"
	selPartyName     = "span.name"
	selGoodsName     = "span.goods"
	selDetailItem    = "div.tr-detail-item"
	selEventTime     = "div.time"
	selEventStatus   = "div.title"
	selEventLocation = "div.location"
)

const (
	recipientLabel = "받는 분"
	senderLabel    = "보내는 분"
)

// KyungdongCarrier scrapes the Kyungdong Express web tracking page
type KyungdongCarrier struct {
	fetcher Fetcher
	logger  *slog.Logger
	baseURL string
}

// NewKyungdongCarrier creates the kdexp carrier from shared configuration
func NewKyungdongCarrier(cfg *CarrierConfig) Carrier {
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(KyungdongCarrierID, cfg.UserAgent, cfg.FetchTimeout, cfg.MaxRetries)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &KyungdongCarrier{
		fetcher: fetcher,
		logger:  logger,
		baseURL: kyungdongTrackingURL,
	}
}

// ID returns the carrier code
func (c *KyungdongCarrier) ID() string {
	return KyungdongCarrierID
}

// Name returns the human-readable carrier name
func (c *KyungdongCarrier) Name() string {
	return "경동택배"
}

// Track retrieves tracking information for a single tracking number. It
// returns a not-found CarrierError when the page reports no record and
// passes transport errors through unchanged. Field-level anomalies never
// fail the call; they degrade to StatusUnknown or a nil timestamp with a
// warning log.
func (c *KyungdongCarrier) Track(ctx context.Context, trackingNumber string) (*TrackInfo, error) {
	logger := c.logger.With("carrier", KyungdongCarrierID, "tracking_number", trackingNumber)

	form := url.Values{
		"invoice_no": {trackingNumber},
		"kind_type":  {""},
	}
	resp, err := c.fetcher.Fetch(ctx, c.baseURL, RequestOptions{
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:    form.Encode(),
	})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Text()))
	if err != nil {
		return nil, fmt.Errorf("parsing tracking page: %w", err)
	}

	// Existence check runs before any extraction. Two independent signals:
	// an explicit error message, or no result container at all.
	if msg := strings.TrimSpace(doc.Find(selErrorMessage).Text()); msg != "" {
		return nil, NotFoundError(KyungdongCarrierID, msg)
	}
	if doc.Find(selResult).Length() == 0 {
		return nil, NotFoundError(KyungdongCarrierID,
			"tracking result not found for "+trackingNumber)
	}

	info := &TrackInfo{
		CarrierSpecificData: make(map[string]string),
	}

	if container := findByLabel(doc, recipientLabel, partyContainerDepth); container != nil {
		if name := strings.TrimSpace(container.Find(selPartyName).First().Text()); name != "" {
			info.Recipient = &Party{Name: &name}
		}
		if goods := strings.TrimSpace(container.Find(selGoodsName).First().Text()); goods != "" {
			info.CarrierSpecificData[rawKey(KyungdongCarrierID, "goods-name")] = goods
		}
	}
	if container := findByLabel(doc, senderLabel, partyContainerDepth); container != nil {
		if name := strings.TrimSpace(container.Find(selPartyName).First().Text()); name != "" {
			info.Sender = &Party{Name: &name}
		}
	}

	var events []TrackEvent
	doc.Find(selDetailItem).Each(func(_ int, item *goquery.Selection) {
		rawTime := brSeparatedText(item.Find(selEventTime).First())
		statusTitle := strings.TrimSpace(item.Find(selEventStatus).First().Text())
		locationName := strings.TrimSpace(item.Find(selEventLocation).First().Text())

		// Not a valid event without both a timestamp fragment and a title
		if rawTime == "" || statusTitle == "" {
			return
		}

		events = append(events, TrackEvent{
			Status: Status{
				Code: classifyStatus(statusTitle, logger),
				Name: statusTitle,
			},
			Time: parseEventTime(rawTime, logger),
			Location: &Location{
				CountryCode: "KR",
				Name:        locationName,
			},
			Description: statusTitle + " - " + locationName,
		})
	})

	// The page lists events newest first; callers get oldest first.
	// Reversed exactly once, after collection.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	info.Events = events

	return info, nil
}

// partyContainerDepth is how many ancestors above a party label the
// enclosing info block sits. Markup drift means re-tuning this constant,
// not re-deriving the traversal.
const partyContainerDepth = 2

// findByLabel locates the container enclosing the element whose trimmed
// text exactly equals label, climbing depth ancestors above it. Returns nil
// when no label matches; the caller degrades the field rather than failing.
func findByLabel(doc *goquery.Document, label string, depth int) *goquery.Selection {
	var container *goquery.Selection
	doc.Find(selPartyLabel).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) != label {
			return true
		}
		container = sel
		for i := 0; i < depth; i++ {
			container = container.Parent()
		}
		return false
	})
	return container
}

var (
	brTagPattern      = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// brSeparatedText renders a cell whose lines are separated by <br> into a
// single string with "T" as the separator, with all whitespace stripped.
// The kdexp date/time cell renders date and time on two lines, so this
// yields "2026-01-16T10:57:48" ready for time parsing.
func brSeparatedText(sel *goquery.Selection) string {
	markup, err := sel.Html()
	if err != nil {
		return ""
	}
	markup = brTagPattern.ReplaceAllString(markup, "T")
	markup = htmlTagPattern.ReplaceAllString(markup, "")
	markup = html.UnescapeString(markup)
	return whitespacePattern.ReplaceAllString(markup, "")
}

// statusRule pairs a predicate with the status code it yields. Rules are
// evaluated strictly in order; the first matching rule wins and the order
// must not be rearranged. A title containing both "도착" and "배송완료"
// is a delivery, which is why rule 2 carries the negative condition.
type statusRule struct {
	matches func(title string) bool
	code    StatusCode
}

var statusRules = []statusRule{
	{func(t string) bool { return strings.Contains(t, "집하") }, StatusAtPickup},
	{func(t string) bool {
		return strings.Contains(t, "도착") && !strings.Contains(t, "배송완료")
	}, StatusInTransit},
	{func(t string) bool { return strings.Contains(t, "배송출발") }, StatusOutForDelivery},
	{func(t string) bool {
		return strings.Contains(t, "배송완료") || strings.Contains(t, "인수완료")
	}, StatusDelivered},
	{func(t string) bool {
		return strings.Contains(t, "이동중") || strings.Contains(t, "간선")
	}, StatusInTransit},
}

// classifyStatus maps raw kdexp status text to the normalized taxonomy.
// Unrecognized text is valid input: it maps to StatusUnknown with a
// warning, never an error.
func classifyStatus(title string, logger *slog.Logger) StatusCode {
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, rule := range statusRules {
		if rule.matches(normalized) {
			return rule.code
		}
	}
	logger.Warn("unrecognized status text", "status", title)
	return StatusUnknown
}

const eventTimeLayout = "2006-01-02T15:04:05"

// parseEventTime parses a normalized date/time string in carrier-local
// time. A nil result is valid domain state (event exists, timestamp
// unknown) as opposed to a dropped event.
func parseEventTime(raw string, logger *slog.Logger) *time.Time {
	t, err := time.ParseInLocation(eventTimeLayout, raw, kstZone)
	if err != nil {
		logger.Warn("unparseable event time", "time", raw, "error", err)
		return nil
	}
	return &t
}
