package feed_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/config"
	"episodic/internal/feed"
	"episodic/internal/logging"
	"episodic/internal/services"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Sample Show</title>
    <item>
      <guid>ep-1</guid>
      <title>Episode 1: Beginnings</title>
      <description><![CDATA[<p>Hello <b>world</b></p>]]></description>
      <link>https://example.com/ep1</link>
      <pubDate>Mon, 01 Jan 2024 10:00:00 +0000</pubDate>
      <enclosure url="https://cdn.example.com/ep1.mp3" type="audio/mpeg" length="1"/>
      <itunes:duration>3725</itunes:duration>
    </item>
    <item>
      <guid>ep-2</guid>
      <title>   </title>
      <description>No title here</description>
    </item>
    <item>
      <title>RIHC: Untitled Guidless</title>
      <description>Second</description>
      <link>not a url</link>
      <itunes:duration>5:07</itunes:duration>
    </item>
  </channel>
</rss>`

func newClient() *feed.Client {
	return feed.NewClient(config.Feed{TimeoutSeconds: 5, UserAgent: "episodic/test"}, logging.NewNop())
}

func TestFetchAndParse(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	episodes, err := newClient().FetchAndParse(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "episodic/test", gotUA)
	require.Len(t, episodes, 2)

	first := episodes[0]
	assert.Equal(t, "ep-1", first.GUID)
	assert.Equal(t, "Episode 1: Beginnings", first.Title)
	assert.Equal(t, "<p>Hello <b>world</b></p>", first.Description)
	assert.Equal(t, "https://example.com/ep1", first.Link)
	assert.Equal(t, "https://cdn.example.com/ep1.mp3", first.AudioURL)
	assert.Equal(t, "01:02:05", first.Duration)
	require.NotNil(t, first.PublishedDate)
	assert.True(t, first.PublishedDate.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))

	second := episodes[1]
	assert.Empty(t, second.GUID)
	assert.Equal(t, "RIHC: Untitled Guidless", second.Title)
	assert.Empty(t, second.Link, "malformed link is dropped")
	assert.Equal(t, "00:05:07", second.Duration)
	assert.Nil(t, second.PublishedDate)
}

func TestFetchErrorOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient().FetchAndParse(t.Context(), srv.URL)
	var fetchErr *feed.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
	assert.True(t, errors.Is(err, services.ErrFetch))
}

func TestFetchErrorOnTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient().FetchAndParse(t.Context(), url)
	var fetchErr *feed.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.ErrorIs(t, err, services.ErrFetch)
}

func TestParseErrorOnGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("this is not a feed"))
	}))
	defer srv.Close()

	_, err := newClient().FetchAndParse(t.Context(), srv.URL)
	var parseErr *feed.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, srv.URL, parseErr.URL)
	assert.ErrorIs(t, err, services.ErrParse)

	_, err = newClient().Parse(nil)
	require.ErrorAs(t, err, &parseErr)
}

func TestNormalizeDuration(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"45":       "00:00:45",
		"3600":     "01:00:00",
		"5:07":     "00:05:07",
		"1:2:3":    "01:02:03",
		"01:02:03": "01:02:03",
		"75:30":    "01:15:30",
		"0:90:61":  "01:31:01",
		"1h20m":    "1h20m",
		"1:2:3:4":  "1:2:3:4",
		"-5":       "-5",
	}
	for in, want := range cases {
		assert.Equal(t, want, feed.NormalizeDuration(in), "input %q", in)
	}
}
