package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mmcdole/gofeed"

	"episodic/internal/config"
	"episodic/internal/logging"
)

// maxFeedBytes caps how much of a response body is read.
const maxFeedBytes = 32 << 20

// RawEpisode is one feed item before it reaches the store.
type RawEpisode struct {
	GUID          string
	Title         string `validate:"required"`
	Description   string
	Link          string `validate:"omitempty,url"`
	PublishedDate *time.Time
	Duration      string
	AudioURL      string `validate:"omitempty,url"`
}

// Source fetches and parses a feed.
type Source interface {
	FetchAndParse(ctx context.Context, url string) ([]RawEpisode, error)
}

// Client is the HTTP-backed Source.
type Client struct {
	httpClient *http.Client
	userAgent  string
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewClient builds a feed client from cfg.
func NewClient(cfg config.Feed, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logging.NewComponentLogger(logger, "feed"),
	}
}

// FetchAndParse downloads url and parses every item. Transport failures and
// non-2xx responses return *FetchError; undecodable bodies return
// *ParseError.
func (c *Client) FetchAndParse(ctx context.Context, url string) ([]RawEpisode, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	episodes, err := c.Parse(body)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.URL = url
		}
		return nil, err
	}
	c.logger.Info("feed parsed",
		logging.String(logging.FieldEventType, "feed_parsed"),
		logging.String("url", url),
		logging.Int("items", len(episodes)),
	)
	return episodes, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// Parse decodes a feed document. Items that fail validation are skipped or
// repaired and logged.
func (c *Client) Parse(data []byte) ([]RawEpisode, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Err: errors.New("empty feed body")}
	}
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	episodes := make([]RawEpisode, 0, len(parsed.Items))
	for idx, item := range parsed.Items {
		if item == nil {
			continue
		}
		ep := fromItem(item)
		if ok := c.check(&ep, idx); !ok {
			continue
		}
		episodes = append(episodes, ep)
	}
	return episodes, nil
}

func fromItem(item *gofeed.Item) RawEpisode {
	ep := RawEpisode{
		GUID:        strings.TrimSpace(item.GUID),
		Title:       strings.TrimSpace(item.Title),
		Description: strings.TrimSpace(item.Description),
		Link:        strings.TrimSpace(item.Link),
	}
	if ep.Description == "" {
		ep.Description = strings.TrimSpace(item.Content)
	}
	switch {
	case item.PublishedParsed != nil:
		published := item.PublishedParsed.UTC()
		ep.PublishedDate = &published
	case item.UpdatedParsed != nil:
		updated := item.UpdatedParsed.UTC()
		ep.PublishedDate = &updated
	}
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.TrimSpace(enclosure.URL) != "" {
			ep.AudioURL = strings.TrimSpace(enclosure.URL)
			break
		}
	}
	if item.ITunesExt != nil {
		ep.Duration = NormalizeDuration(item.ITunesExt.Duration)
	}
	return ep
}

// check validates ep in place. A missing title rejects the item; bad URLs
// are cleared.
func (c *Client) check(ep *RawEpisode, idx int) bool {
	err := c.validate.Struct(ep)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.logger.Warn("feed item validation failed", logging.Int("item_index", idx), logging.Error(err))
		return false
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Title":
			logging.WarnWithContext(c.logger, "skipping feed item without title", "feed_item_skipped",
				logging.Int("item_index", idx),
				logging.String("guid", ep.GUID),
				logging.String(logging.FieldErrorHint, "check the feed for items with an empty <title>"),
				logging.String(logging.FieldImpact, "item not ingested"),
			)
			return false
		case "Link":
			c.logger.Warn("dropping malformed item link", logging.Int("item_index", idx), logging.String("link", ep.Link))
			ep.Link = ""
		case "AudioURL":
			c.logger.Warn("dropping malformed enclosure url", logging.Int("item_index", idx), logging.String("audio_url", ep.AudioURL))
			ep.AudioURL = ""
		}
	}
	return true
}
