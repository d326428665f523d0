package torn

import (
	"fcd/internal/models"
	"regexp"
	"strconv"
	"strings"
)

// xanaxMarker is the fixed phrase the armory feed uses for a faction Xanax
// withdrawal.
const xanaxMarker = "used one of the faction's Xanax items"

const actorMarker = " used "

var (
	profileLinkRe = regexp.MustCompile(`<a\s+[^>]*XID=(\d+)[^>]*>([^<]*)</a>`)
	pointSpendRe  = regexp.MustCompile(`(?i)used\s+(\d+)\s+faction points`)
	markupRe      = regexp.MustCompile(`<[^>]*>`)
)

// extractActor resolves the member behind a feed message. Layered: a profile
// link wins, then the markup-stripped words before " used ", then the first
// token, then the Unknown sentinel.
func extractActor(text string) (id, name string) {
	if m := profileLinkRe.FindStringSubmatch(text); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	clean := strings.TrimSpace(markupRe.ReplaceAllString(text, ""))
	if idx := strings.Index(clean, actorMarker); idx > 0 {
		name = strings.TrimSpace(clean[:idx])
	} else if fields := strings.Fields(clean); len(fields) > 0 {
		name = fields[0]
	}
	if name == "" {
		name = "Unknown"
	}
	return name, name
}

// ParseNewsItem turns one raw feed message into zero or more typed
// consumption events. A message can report a Xanax use and point spends at
// the same time, or be irrelevant chatter.
func ParseNewsItem(sourceID string, timestamp int64, text string) []models.ConsumptionEvent {
	usedXanax := strings.Contains(text, xanaxMarker)
	pointMatches := pointSpendRe.FindAllStringSubmatch(text, -1)
	if !usedXanax && len(pointMatches) == 0 {
		return nil
	}

	actorID, actorName := extractActor(text)

	var events []models.ConsumptionEvent
	if usedXanax {
		events = append(events, models.ConsumptionEvent{
			ActorID:   actorID,
			ActorName: actorName,
			Kind:      models.EventItemUse,
			Quantity:  1,
			Timestamp: timestamp,
			SourceID:  sourceID,
		})
	}
	for _, m := range pointMatches {
		qty, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || qty <= 0 {
			continue
		}
		events = append(events, models.ConsumptionEvent{
			ActorID:   actorID,
			ActorName: actorName,
			Kind:      models.EventPointSpend,
			Quantity:  qty,
			Timestamp: timestamp,
			SourceID:  sourceID,
		})
	}
	return events
}
