package search

import (
	"strings"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseFragment(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	return doc
}

func TestFormatDictionaryExtractsFirstDefinition(t *testing.T) {
	t.Parallel()

	body := []byte(`[{"word":"hello","meanings":[{"partOfSpeech":"noun","definitions":[
		{"definition":"\"Hello!\" or an equivalent greeting."},
		{"definition":"second"}]}]}]`)

	fragment, err := FormatDictionary("hello", body, 200)
	require.NoError(t, err)

	doc := parseFragment(t, fragment)
	require.Equal(t, "Results: hello", doc.Find("div h1").Text())
	require.Equal(t, `"Hello!" or an equivalent greeting.`, doc.Find("div p").Text())
	style, _ := doc.Find("div").Attr("style")
	require.Equal(t, "width:50%; float:right;", style)
}

func TestFormatDictionaryFallbacks(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"object with empty meanings": `{"meanings":[]}`,
		"no definitions found":       `{"title":"No Definitions Found","message":"Sorry pal"}`,
		"empty array":                `[]`,
		"empty definitions":          `[{"meanings":[{"definitions":[]}]}]`,
		"empty definition text":      `[{"meanings":[{"definitions":[{"definition":""}]}]}]`,
		"non string definition":      `[{"meanings":[{"definitions":[{"definition":42}]}]}]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			fragment, err := FormatDictionary("word", []byte(body), 404)
			require.NoError(t, err)
			require.Equal(t, NoDefinition, parseFragment(t, fragment).Find("div p").Text())
		})
	}
}

func TestFormatDictionaryMalformedBody(t *testing.T) {
	t.Parallel()

	fragment, err := FormatDictionary("word", []byte(`<html>bad gateway</html>`), 502)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, "dictionary", parseErr.Upstream)
	require.Equal(t, 502, parseErr.StatusCode)
	require.Equal(t, NoDefinition, parseFragment(t, fragment).Find("div p").Text())
}

func TestFormatDictionaryEscapesWord(t *testing.T) {
	t.Parallel()

	fragment, err := FormatDictionary("<script>alert(1)</script>", []byte(`[]`), 404)
	require.NoError(t, err)
	require.NotContains(t, fragment, "<script>")
	require.Contains(t, fragment, "&lt;script&gt;")
}

func TestFormatJobsEmptyUsesDefaults(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"SearchResult":{"SearchResultItems":[]}}`,
		`{"SearchResult":{}}`,
		`{}`,
		`not json`,
		`{"SearchResult":{"SearchResultItems":{"unexpected":"object"}}}`,
	} {
		fragment, err := FormatJobs("", "", []byte(body))
		require.NoError(t, err)

		doc := parseFragment(t, fragment)
		require.Equal(t, "Search Results: All Jobs in Everywhere", doc.Find("div h2").Text())
		require.Zero(t, doc.Find("li").Length())
		style, _ := doc.Find("div").Attr("style")
		require.Equal(t, "width:50%; float:left;", style)
	}
}

func TestFormatJobsRendersItems(t *testing.T) {
	t.Parallel()

	body := []byte(`{"SearchResult":{"SearchResultItems":[
		{"MatchedObjectDescriptor":{
			"PositionTitle":"Staff Nurse",
			"PositionURI":"https://www.usajobs.gov/job/1",
			"QualificationSummary":"Registered nurse license required."}},
		{"MatchedObjectDescriptor":{"PositionTitle":"Clerk"}},
		{}
	]}}`)

	fragment, err := FormatJobs("nurse", "Denver, Colorado", body)
	require.NoError(t, err)

	doc := parseFragment(t, fragment)
	require.Equal(t, "Search Results: nurse in Denver, Colorado", doc.Find("div h2").Text())

	items := doc.Find("li")
	require.Equal(t, 3, items.Length())

	first := items.Eq(0)
	href, _ := first.Find("a").Attr("href")
	require.Equal(t, "https://www.usajobs.gov/job/1", href)
	require.Equal(t, "Staff Nurse", first.Find("a").Text())
	require.Equal(t, "Registered nurse license required.", first.Find("p").Text())

	second := items.Eq(1)
	href, _ = second.Find("a").Attr("href")
	require.Equal(t, "undefined", href)
	require.Equal(t, "Clerk", second.Find("a").Text())
	require.Equal(t, "undefined", second.Find("p").Text())

	third := items.Eq(2)
	require.Equal(t, "undefined", third.Find("a").Text())
}

func TestExtractJobsRendersScalars(t *testing.T) {
	t.Parallel()

	jobs := ExtractJobs([]byte(`{"SearchResult":{"SearchResultItems":[
		{"MatchedObjectDescriptor":{"PositionTitle":12.5,"PositionURI":null,"QualificationSummary":true}},
		null
	]}}`))
	require.Equal(t, []Job{
		{Title: "12.5", URL: "null", Summary: "true"},
		{Title: missingField, URL: missingField, Summary: missingField},
	}, jobs)
}

func TestUnavailableFragment(t *testing.T) {
	t.Parallel()

	doc := parseFragment(t, UnavailableFragment("usajobs"))
	require.Equal(t, "usajobs is unavailable right now", doc.Find("p").Text())
}
