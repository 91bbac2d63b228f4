package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumeworks/plume/internal/document"
)

const resultPage = `<html><body>
<div class="results">
  <div class="result">
    <h2 class="result__title">
      <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fdocs.example.com%2Fguide&amp;rut=abc">Example <b>Guide</b></a>
    </h2>
    <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fdocs.example.com%2Fguide">A guide to the <b>example</b> system.</a>
  </div>
  <div class="result">
    <h2 class="result__title">
      <a class="result__a" href="https://www.reddit.com/r/example/">Example subreddit</a>
    </h2>
    <div class="result__snippet">Community discussion of examples.</div>
  </div>
</div>
</body></html>`

func TestHTMLSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "example guide", r.URL.Query().Get("q"))
		io.WriteString(w, resultPage)
	}))
	defer srv.Close()

	h := NewHTML(WithHTMLEndpoint(srv.URL))
	results, err := h.Search(context.Background(), "example guide")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Example Guide", results[0].Title)
	assert.Equal(t, "https://docs.example.com/guide", results[0].URL)
	assert.Equal(t, "A guide to the example system.", results[0].Snippet)
	assert.Equal(t, document.ReliabilityOfficial, results[0].Reliability)

	assert.Equal(t, "Example subreddit", results[1].Title)
	assert.Equal(t, "https://www.reddit.com/r/example/", results[1].URL)
	assert.Equal(t, "Community discussion of examples.", results[1].Snippet)
	assert.Equal(t, document.ReliabilityCommunity, results[1].Reliability)
}

func TestHTMLSearchInDomain(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "site:golang.org generics", r.URL.Query().Get("q"))
		io.WriteString(w, resultPage)
	}))
	defer srv.Close()

	h := NewHTML(WithHTMLEndpoint(srv.URL))
	results, err := h.SearchInDomain(context.Background(), "generics", "golang.org")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestHTMLRetriesAccepted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		io.WriteString(w, resultPage)
	}))
	defer srv.Close()

	h := NewHTML(WithHTMLEndpoint(srv.URL))
	h.client.RetryWaitMin = time.Millisecond
	h.client.RetryWaitMax = 5 * time.Millisecond

	results, err := h.Search(context.Background(), "example")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTMLTopicSummary(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, resultPage)
	}))
	defer srv.Close()

	h := NewHTML(WithHTMLEndpoint(srv.URL))
	summary, err := h.TopicSummary(context.Background(), "example")
	require.NoError(t, err)
	assert.Equal(t, "A guide to the example system.", summary)
}

func TestHTMLRelatedTopicsEmpty(t *testing.T) {
	t.Parallel()

	h := NewHTML()
	related, err := h.RelatedTopics(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestDecodeResultURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fdocs.example.com%2Fguide&rut=abc", "https://docs.example.com/guide"},
		{"https://direct.example.com/page", "https://direct.example.com/page"},
		{"//protocol.relative.example.com/page", "https://protocol.relative.example.com/page"},
		{"/relative/path", "/relative/path"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, decodeResultURL(tt.href), "href %q", tt.href)
	}
}
