package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/a11ypipe/internal/config"
	"github.com/fyrsmithlabs/a11ypipe/internal/logging"
)

// newTestClient points a Client at a local test server with fast retries.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gh := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = base

	return &Client{
		gh: gh,
		retry: &RetryConfig{
			MaxRetries:        2,
			InitialBackoff:    time.Millisecond,
			MaxBackoff:        5 * time.Millisecond,
			BackoffMultiplier: 2,
		},
		logger: logging.NewTestLogger().Logger,
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(context.Background(), config.Secret(""), logging.NewTestLogger().Logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token not set")

	client, err := NewClient(context.Background(), config.Secret("ghp_test"), logging.NewTestLogger().Logger)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestOpenPullRequest(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number": 7, "html_url": "https://github.com/org/site/pull/7"}`)
	}))

	url, err := client.OpenPullRequest(context.Background(),
		"org/site", "Fix accessibility issues", "body", "accessibility-fixes", "main")
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/org/site/pull/7", url)
	assert.Equal(t, "/repos/org/site/pulls", gotPath)
}

func TestOpenPullRequest_RetriesServerErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number": 1, "html_url": "https://github.com/org/site/pull/1"}`)
	}))

	url, err := client.OpenPullRequest(context.Background(),
		"org/site", "t", "b", "head", "main")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "https://github.com/org/site/pull/1", url)
}

func TestOpenPullRequest_ValidationErrorNotRetried(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message": "Validation Failed"}`)
	}))

	_, err := client.OpenPullRequest(context.Background(),
		"org/site", "t", "b", "head", "main")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "422 is a terminal client error")
}

func TestSplitRepoName(t *testing.T) {
	owner, repo, err := splitRepoName("org/site")
	require.NoError(t, err)
	assert.Equal(t, "org", owner)
	assert.Equal(t, "site", repo)

	_, _, err = splitRepoName("just-a-name")
	require.Error(t, err)
	_, _, err = splitRepoName("/site")
	require.Error(t, err)
}

func TestIsRetryableError(t *testing.T) {
	resp := func(code int) *github.Response {
		return &github.Response{Response: &http.Response{StatusCode: code}}
	}
	someErr := fmt.Errorf("boom")

	assert.False(t, isRetryableError(nil, resp(500)))
	assert.True(t, isRetryableError(someErr, resp(429)))
	assert.True(t, isRetryableError(someErr, resp(500)))
	assert.True(t, isRetryableError(someErr, resp(502)))
	assert.True(t, isRetryableError(someErr, resp(503)))
	assert.True(t, isRetryableError(someErr, resp(504)))
	assert.False(t, isRetryableError(someErr, resp(400)))
	assert.False(t, isRetryableError(someErr, resp(404)))
	assert.False(t, isRetryableError(someErr, resp(422)))
	assert.True(t, isRetryableError(someErr, nil), "no response means a network error")

	// Forbidden with rate headers is a secondary rate limit.
	forbidden := resp(403)
	assert.False(t, isRetryableError(someErr, forbidden))
	forbidden.Rate.Limit = 5000
	assert.True(t, isRetryableError(someErr, forbidden))
}
