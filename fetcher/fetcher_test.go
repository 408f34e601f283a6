package fetcher_test

import (
	"blogroll/fetcher"
	"blogroll/models"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRSSFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Blog</title>
    <link>https://blog.example.com</link>
    <description>A test RSS feed</description>
    <item>
      <title>First post</title>
      <link>https://blog.example.com/post/1</link>
      <guid>post-1</guid>
      <description><![CDATA[<p>Hello &amp; welcome to <b>my   blog</b>.</p>]]></description>
      <category>go</category>
      <pubDate>Thu, 19 Feb 2026 08:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Second post</title>
      <link>https://blog.example.com/post/2</link>
      <description>Plain text</description>
      <pubDate>Wed, 18 Feb 2026 08:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Undated post</title>
      <link>https://blog.example.com/post/3</link>
      <description>No date</description>
    </item>
  </channel>
</rss>`

const testAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Blog</title>
  <entry>
    <title>Atom entry</title>
    <link href="https://atom.example.com/1"/>
    <id>urn:atom:1</id>
    <summary>Atom summary</summary>
    <updated>2026-02-19T09:00:00Z</updated>
  </entry>
</feed>`

func setupTestServer(content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, content)
	}))
}

func source(url string) models.Source {
	return models.Source{Name: "Test", URL: url, Host: "blog.example.com"}
}

func TestFetchRSS(t *testing.T) {
	srv := setupTestServer(testRSSFeed)
	defer srv.Close()

	items, err := fetcher.New().Fetch(context.Background(), source(srv.URL))
	require.NoError(t, err)
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, "First post", first.Title)
	assert.Equal(t, "https://blog.example.com/post/1", first.Link)
	assert.True(t, first.Published.Equal(time.Date(2026, 2, 19, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Thu, 19 Feb 2026 08:00:00 +0000", first.PublishedRaw)
	assert.Equal(t, "Hello & welcome to my blog.", first.ContentSnippet)
	assert.Equal(t, "post-1", first.Extra["guid"])
	assert.Equal(t, []string{"go"}, first.Extra["categories"])

	assert.Equal(t, "Plain text", items[1].ContentSnippet)
	assert.True(t, items[2].Published.IsZero())
}

func TestFetchAtom(t *testing.T) {
	srv := setupTestServer(testAtomFeed)
	defer srv.Close()

	items, err := fetcher.New().Fetch(context.Background(), source(srv.URL))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Atom entry", items[0].Title)
	assert.Equal(t, "https://atom.example.com/1", items[0].Link)
	assert.Equal(t, "Atom summary", items[0].ContentSnippet)
	assert.True(t, items[0].Published.Equal(time.Date(2026, 2, 19, 9, 0, 0, 0, time.UTC)))
}

func TestFetchMaxItems(t *testing.T) {
	srv := setupTestServer(testRSSFeed)
	defer srv.Close()

	items, err := fetcher.New(fetcher.WithMaxItems(2)).Fetch(context.Background(), source(srv.URL))
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFetchSendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		fmt.Fprint(w, testAtomFeed)
	}))
	defer srv.Close()

	_, err := fetcher.New(fetcher.WithUserAgent("tester/2.0")).Fetch(context.Background(), source(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "tester/2.0", got)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		opts    []fetcher.Option
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not a feed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "not xml")
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(2 * time.Second):
				case <-r.Context().Done():
				}
			},
			opts: []fetcher.Option{fetcher.WithTimeout(50 * time.Millisecond)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			src := source(srv.URL)
			items, err := fetcher.New(tt.opts...).Fetch(context.Background(), src)
			require.Error(t, err)
			assert.Nil(t, items)

			var fetchErr *fetcher.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, src, fetchErr.Source)
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := setupTestServer(testRSSFeed)
	url := srv.URL
	srv.Close()

	_, err := fetcher.New().Fetch(context.Background(), source(url))
	var fetchErr *fetcher.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
