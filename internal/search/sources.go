package search

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/wordjobs/library/upstream"
)

const (
	dictionarySourceName = "dictionary"
	jobsSourceName       = "usajobs"
)

// Source is one branch of the fan-out: it fetches an upstream and renders
// its fragment.
type Source interface {
	// Name identifies the upstream in logs and error fragments.
	Name() string
	// Delay is the artificial wait before the fragment is written.
	Delay(req Request) time.Duration
	// Fragment fetches the upstream and renders the HTML fragment. A non-empty
	// fragment returned together with an error is still written.
	Fragment(ctx context.Context, req Request) (string, error)
}

// DictionarySource looks the search word up in a dictionary API.
type DictionarySource struct {
	fetcher upstream.Fetcher
	baseURL string
}

// NewDictionarySource returns a source querying baseURL/<escaped word>.
func NewDictionarySource(fetcher upstream.Fetcher, baseURL string) (*DictionarySource, error) {
	if fetcher == nil {
		return nil, errors.New("dictionary fetcher cannot be nil")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("dictionary base url cannot be empty")
	}
	return &DictionarySource{fetcher: fetcher, baseURL: baseURL}, nil
}

// Name implements Source.
func (s *DictionarySource) Name() string {
	return dictionarySourceName
}

// Delay implements Source.
func (s *DictionarySource) Delay(req Request) time.Duration {
	return req.DictionaryDelay
}

// URL returns the lookup address for word.
func (s *DictionarySource) URL(word string) string {
	return s.baseURL + "/" + url.PathEscape(word)
}

// Fragment implements Source.
func (s *DictionarySource) Fragment(ctx context.Context, req Request) (string, error) {
	result, err := s.fetcher.Get(ctx, s.URL(req.Word), nil)
	if err != nil {
		return "", errors.Wrap(err, "fetch dictionary")
	}
	return FormatDictionary(req.Word, result.Body, result.StatusCode)
}

// JobsCredentials are the request headers the job-search API requires.
type JobsCredentials struct {
	Host             string
	UserAgent        string
	AuthorizationKey string
}

// JobsSource queries the USAJOBS search API.
type JobsSource struct {
	fetcher upstream.Fetcher
	baseURL *url.URL
	header  http.Header
}

// NewJobsSource returns a source querying baseURL with the given credentials.
func NewJobsSource(fetcher upstream.Fetcher, baseURL string, creds JobsCredentials) (*JobsSource, error) {
	if fetcher == nil {
		return nil, errors.New("jobs fetcher cannot be nil")
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, errors.Wrapf(err, "parse jobs base url %q", baseURL)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("jobs base url %q must be absolute", baseURL)
	}

	header := http.Header{}
	if creds.Host != "" {
		header.Set("Host", creds.Host)
	}
	header.Set("User-Agent", creds.UserAgent)
	header.Set("Authorization-Key", creds.AuthorizationKey)

	return &JobsSource{fetcher: fetcher, baseURL: parsed, header: header}, nil
}

// Name implements Source.
func (s *JobsSource) Name() string {
	return jobsSourceName
}

// Delay implements Source.
func (s *JobsSource) Delay(req Request) time.Duration {
	return req.JobsDelay
}

// URL returns the search address, keyword and location_name are only set
// when non-empty.
func (s *JobsSource) URL(keyword, locationName string) string {
	u := *s.baseURL
	params := u.Query()
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	if locationName != "" {
		params.Set("location_name", locationName)
	}
	u.RawQuery = params.Encode()
	return u.String()
}

// Fragment implements Source.
func (s *JobsSource) Fragment(ctx context.Context, req Request) (string, error) {
	result, err := s.fetcher.Get(ctx, s.URL(req.Keyword, req.LocationName), s.header.Clone())
	if err != nil {
		return "", errors.Wrap(err, "fetch usajobs")
	}
	return FormatJobs(req.Keyword, req.LocationName, result.Body)
}
