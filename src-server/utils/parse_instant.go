package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Layout accepted for wall-clock input, interpreted in the configured location.
const WallClockLayout = "2006-01-02 15:04"

type InstantParser struct {
	when     *when.Parser
	location *time.Location
	now      func() time.Time
}

func NewInstantParser(location *time.Location) *InstantParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	if location == nil {
		location = time.Local
	}
	return &InstantParser{when: w, location: location, now: time.Now}
}

// Parse reads an instant written as RFC 3339, as WallClockLayout, or in
// plain English ("tomorrow at 9am"). The result is in UTC.
func (p *InstantParser) Parse(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("(*InstantParser).Parse: text is blank")
	}

	if t, err := time.Parse(time.RFC3339Nano, text); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(WallClockLayout, text, p.location); err == nil {
		return t.UTC(), nil
	}

	result, err := p.when.Parse(text, p.now().In(p.location))
	if err != nil {
		return time.Time{}, fmt.Errorf("(*InstantParser).Parse: can't parse %q: %w", text, err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("(*InstantParser).Parse: no date found in %q", text)
	}
	return result.Time.UTC(), nil
}
