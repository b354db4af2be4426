// Package search fans one search request out to the dictionary and job-search
// upstreams and streams both HTML fragments back to the caller.
package search

import (
	"net/url"
	"strings"
	"time"
)

const (
	// MaxDelay is the upper bound of the artificial per-branch delay.
	MaxDelay = 10 * time.Second

	maxDelayMs = int64(MaxDelay / time.Millisecond)
)

// Request is the immutable input of one search.
type Request struct {
	Word            string
	DictionaryDelay time.Duration
	Keyword         string
	LocationName    string
	JobsDelay       time.Duration
}

// ParseRequest builds a Request from the inbound query parameters
// word, delay_dictionary, keyword, location_name and delay_usajobs.
func ParseRequest(query url.Values) Request {
	return Request{
		Word:            query.Get("word"),
		DictionaryDelay: ParseDelay(query.Get("delay_dictionary")),
		Keyword:         query.Get("keyword"),
		LocationName:    query.Get("location_name"),
		JobsDelay:       ParseDelay(query.Get("delay_usajobs")),
	}
}

// ParseDelay reads a millisecond delay and clamps it into [0, MaxDelay].
//
// Like a lenient integer parse it accepts leading whitespace, an optional sign
// and the longest run of digits that follows, so "250ms" is 250 and "3.9" is 3.
// Input without leading digits yields 0.
func ParseDelay(raw string) time.Duration {
	s := strings.TrimLeft(raw, " \t\n\r\v\f")
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	var ms int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		// saturate, anything above the bound clamps anyway
		if ms <= maxDelayMs {
			ms = ms*10 + int64(c-'0')
		}
	}

	if negative || ms <= 0 {
		return 0
	}
	if ms > maxDelayMs {
		ms = maxDelayMs
	}
	return time.Duration(ms) * time.Millisecond
}
