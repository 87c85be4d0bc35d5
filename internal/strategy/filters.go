package strategy

import (
	"strings"
	"time"

	"polymarket-hunter/internal/polymarket/gamma"
	"polymarket-hunter/pkg/hashset"
)

// Slugify turns a tag label into the venue's slug form:
// "NBA Finals" -> "nba-finals".
func Slugify(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), "-")
}

// resolveTags is the base domain tag plus the slugged whitelist,
// de-duplicated, base first.
func resolveTags(base string, targets []string) []string {
	seen := hashset.New[string]()
	seen.Add(base)
	tags := []string{base}
	for _, t := range targets {
		slug := Slugify(t)
		if slug == "" || seen.Has(slug) {
			continue
		}
		seen.Add(slug)
		tags = append(tags, slug)
	}
	return tags
}

// matchesTagWhitelist passes when no whitelist is configured, or when
// any target equals or is a substring of any event tag. Labels are
// preferred over slugs, both lower-cased.
func matchesTagWhitelist(eventTags []gamma.Tag, targets []string) bool {
	if len(targets) == 0 {
		return true
	}

	tags := make([]string, 0, len(eventTags))
	for _, t := range eventTags {
		text := t.Label
		if text == "" {
			text = t.Slug
		}
		tags = append(tags, strings.ToLower(text))
	}

	for _, target := range targets {
		want := strings.ToLower(target)
		for _, tag := range tags {
			if tag == want || strings.Contains(tag, want) {
				return true
			}
		}
	}
	return false
}

// hasLongHorizonTitle spots season-long markets ("NBA Finals Champion",
// "Cup Winner") that never resolve on a short horizon. A head-to-head
// matchup ("A vs B") is exempt even when the title carries a keyword.
func hasLongHorizonTitle(title string) bool {
	t := strings.ToLower(title)
	keyword := strings.Contains(t, "champion") ||
		strings.Contains(t, "winner") ||
		strings.Contains(t, "mvp") ||
		strings.Contains(t, "cup")
	return keyword && !strings.Contains(t, "vs")
}

// hoursUntilEnd is negative once the event has ended. A missing end
// date reports an implausibly large negative value so every time
// window rejects it.
func hoursUntilEnd(ev *gamma.Event, now time.Time) float64 {
	if ev.EndDate.IsZero() {
		return -(24 * 365)
	}
	return ev.EndDate.Sub(now).Hours()
}
