package search

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
)

const (
	// NoDefinition replaces a definition the dictionary did not provide.
	NoDefinition = "No definition available"
	// AllJobs titles a job search without keyword.
	AllJobs = "All Jobs"
	// Everywhere titles a job search without location.
	Everywhere = "Everywhere"

	// missingField renders a job field the payload lacks.
	missingField = "undefined"
)

var (
	dictionaryTpl = template.Must(template.New("dictionary").Parse(
		`<div style="width:50%; float:right;"><h1>Results: {{.Word}}</h1><p>{{.Definition}}</p></div>`))

	jobsTpl = template.Must(template.New("jobs").Parse(
		`<div style="width:50%; float:left;"><h2>Search Results: {{.Keyword}} in {{.Location}}</h2>` +
			`{{range .Jobs}}
        <li>
            <a href="{{.URL}}">{{.Title}}</a>
            <p>{{.Summary}}</p>
        </li>
    {{end}}</div>`))

	unavailableTpl = template.Must(template.New("unavailable").Parse(
		`<div><p>{{.}} is unavailable right now</p></div>`))
)

// ParseError reports an upstream body that is not valid JSON.
type ParseError struct {
	Upstream   string
	StatusCode int
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response (status %d): %v", e.Upstream, e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Job is one rendered job posting.
type Job struct {
	Title   string
	URL     string
	Summary string
}

// FormatDictionary renders the dictionary fragment for word.
//
// The definition is taken from [0].meanings[0].definitions[0].definition and
// falls back to NoDefinition when any step is missing. A body that is not JSON
// still renders the fallback fragment, together with a *ParseError.
func FormatDictionary(word string, body []byte, statusCode int) (string, error) {
	definition := NoDefinition

	var doc any
	parseErr := json.Unmarshal(body, &doc)
	if parseErr == nil {
		if v, ok := lookup(doc, 0, "meanings", 0, "definitions", 0, "definition"); ok {
			if text, ok := v.(string); ok && text != "" {
				definition = text
			}
		}
	}

	var sb strings.Builder
	if err := dictionaryTpl.Execute(&sb, struct {
		Word       string
		Definition string
	}{word, definition}); err != nil {
		return "", errors.Wrap(err, "render dictionary fragment")
	}

	if parseErr != nil {
		return sb.String(), &ParseError{Upstream: "dictionary", StatusCode: statusCode, Err: parseErr}
	}
	return sb.String(), nil
}

// ExtractJobs returns the postings under SearchResult.SearchResultItems.
// Malformed bodies and missing paths yield no jobs.
func ExtractJobs(body []byte) []Job {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}

	raw, ok := lookup(doc, "SearchResult", "SearchResultItems")
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	jobs := make([]Job, 0, len(items))
	for _, item := range items {
		jobs = append(jobs, Job{
			Title:   fieldText(item, "MatchedObjectDescriptor", "PositionTitle"),
			URL:     fieldText(item, "MatchedObjectDescriptor", "PositionURI"),
			Summary: fieldText(item, "MatchedObjectDescriptor", "QualificationSummary"),
		})
	}
	return jobs
}

// FormatJobs renders the job-search fragment. Missing job fields render as
// "undefined", an empty keyword or location as AllJobs or Everywhere.
func FormatJobs(keyword, locationName string, body []byte) (string, error) {
	if keyword == "" {
		keyword = AllJobs
	}
	if locationName == "" {
		locationName = Everywhere
	}

	var sb strings.Builder
	if err := jobsTpl.Execute(&sb, struct {
		Keyword  string
		Location string
		Jobs     []Job
	}{keyword, locationName, ExtractJobs(body)}); err != nil {
		return "", errors.Wrap(err, "render jobs fragment")
	}
	return sb.String(), nil
}

// UnavailableFragment is written by a branch whose upstream could not be reached.
func UnavailableFragment(upstream string) string {
	var sb strings.Builder
	if err := unavailableTpl.Execute(&sb, upstream); err != nil {
		return "<div><p>upstream is unavailable right now</p></div>"
	}
	return sb.String()
}

// lookup walks a decoded JSON document by object keys and array indexes.
func lookup(doc any, path ...any) (any, bool) {
	cur := doc
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = obj[key]; !ok {
				return nil, false
			}
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	return cur, true
}

// fieldText renders a JSON value the way a template literal would.
func fieldText(doc any, path ...any) string {
	v, ok := lookup(doc, path...)
	if !ok {
		return missingField
	}
	return jsonText(v)
}

func jsonText(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, elem := range val {
			if elem == nil {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, jsonText(elem))
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}
