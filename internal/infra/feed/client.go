// Package feed fetches the episode list from an RSS feed.
package feed

import (
	"context"

	"github.com/mmcdole/gofeed"
	zlog "github.com/rs/zerolog/log"

	"github.com/DustyBest/podbox/internal/domain/episode"
)

// Client retrieves episodes from a single feed URL.
type Client struct {
	parser *gofeed.Parser
	url    string
}

// NewClient creates a feed client for the given URL.
func NewClient(url string) *Client {
	return &Client{
		parser: gofeed.NewParser(),
		url:    url,
	}
}

// FetchEpisodes retrieves the ordered episode list. Any transport or
// parse failure degrades to an empty list; there is no retry.
func (c *Client) FetchEpisodes(ctx context.Context) []episode.Episode {
	parsed, err := c.parser.ParseURLWithContext(c.url, ctx)
	if err != nil {
		zlog.Warn().Msgf("feed: fetch failed, continuing with empty list: url=%s error=%v", c.url, err)
		return []episode.Episode{}
	}

	feed := mapFeed(parsed)
	zlog.Info().Msgf("feed: fetched episodes: url=%s count=%d", c.url, len(feed.Episodes))
	return feed.Episodes
}

// mapFeed converts a parsed feed into the domain representation.
// Items without an audio enclosure are skipped.
func mapFeed(parsed *gofeed.Feed) episode.Feed {
	feed := episode.Feed{
		Title:    parsed.Title,
		Episodes: make([]episode.Episode, 0, len(parsed.Items)),
	}

	for _, item := range parsed.Items {
		audioURL := enclosureURL(item)
		if audioURL == "" {
			zlog.Debug().Msgf("feed: skipping item without audio enclosure: title=%q", item.Title)
			continue
		}

		id := item.GUID
		if id == "" {
			id = audioURL
		}

		feed.Episodes = append(feed.Episodes, episode.Episode{
			ID:          id,
			Title:       item.Title,
			AudioURL:    audioURL,
			ArtworkURL:  artworkURL(parsed, item),
			PublishedAt: item.PublishedParsed,
		})
	}

	return feed
}

func enclosureURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

// artworkURL prefers the item's own image, then iTunes metadata, then
// the feed-level image.
func artworkURL(parsed *gofeed.Feed, item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		return item.ITunesExt.Image
	}
	if parsed.Image != nil && parsed.Image.URL != "" {
		return parsed.Image.URL
	}
	return ""
}
