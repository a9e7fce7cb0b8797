package collect

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mchmarny/lingopulse/pkg/data"
	lphttp "github.com/mchmarny/lingopulse/pkg/http"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// PlatformHackerNews tags units collected from Hacker News.
	PlatformHackerNews = "hn"

	// FeedTop and FeedNew are the supported story feeds.
	FeedTop = "top"
	FeedNew = "new"

	hnBaseURL = "https://hacker-news.firebaseio.com/v0"

	storyLimitDefault   = 100
	commentLimitDefault = 0
)

var (
	tagRegEx  = regexp.MustCompile(`<[^>]+>`)
	paraRegEx = regexp.MustCompile(`(?i)<p>|<br\s*/?>`)
)

// item is one Hacker News API record, story or comment.
type item struct {
	ID      int64   `json:"id"`
	Deleted bool    `json:"deleted"`
	Dead    bool    `json:"dead"`
	Type    string  `json:"type"`
	By      string  `json:"by"`
	Time    int64   `json:"time"`
	Text    string  `json:"text"`
	Parent  int64   `json:"parent"`
	Kids    []int64 `json:"kids"`
	Title   string  `json:"title"`
}

// HackerNews collects text units from the Hacker News Firebase JSON API.
type HackerNews struct {
	baseURL      string
	storyLimit   int
	commentLimit int
}

// HackerNewsOption tunes a HackerNews collector.
type HackerNewsOption func(*HackerNews)

// WithBaseURL points the collector at a different API endpoint.
func WithBaseURL(url string) HackerNewsOption {
	return func(h *HackerNews) { h.baseURL = strings.TrimSuffix(url, "/") }
}

// WithStoryLimit caps how many stories one collection run fetches.
func WithStoryLimit(n int) HackerNewsOption {
	return func(h *HackerNews) { h.storyLimit = n }
}

// WithCommentLimit enables comment collection, capped per story.
func WithCommentLimit(n int) HackerNewsOption {
	return func(h *HackerNews) { h.commentLimit = n }
}

// NewHackerNews creates a collector for the public API.
func NewHackerNews(opts ...HackerNewsOption) *HackerNews {
	h := &HackerNews{
		baseURL:      hnBaseURL,
		storyLimit:   storyLimitDefault,
		commentLimit: commentLimitDefault,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Collect fetches the named feed (top or new) and returns its stories, plus
// top-level comments when a comment limit is set, as text units. Deleted,
// dead, and empty items are skipped.
func (h *HackerNews) Collect(ctx context.Context, feed string) ([]*data.TextUnit, error) {
	if feed != FeedTop && feed != FeedNew {
		return nil, errors.Errorf("unknown feed: %s (want %s or %s)", feed, FeedTop, FeedNew)
	}

	var ids []int64
	url := fmt.Sprintf("%s/%sstories.json", h.baseURL, feed)
	if err := lphttp.GetJSON(ctx, url, &ids); err != nil {
		return nil, errors.Wrapf(err, "failed to list %s stories", feed)
	}
	if len(ids) > h.storyLimit {
		ids = ids[:h.storyLimit]
	}
	log.Debugf("collecting %d %s stories", len(ids), feed)

	var units []*data.TextUnit
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return units, errors.Wrap(err, "collection canceled")
		}

		story, err := h.getItem(ctx, id)
		if err != nil {
			return units, err
		}
		u := unitFromItem(story)
		if u == nil {
			continue
		}
		units = append(units, u)

		for i, kid := range story.Kids {
			if i >= h.commentLimit {
				break
			}
			comment, err := h.getItem(ctx, kid)
			if err != nil {
				return units, err
			}
			if cu := unitFromItem(comment); cu != nil {
				units = append(units, cu)
			}
		}
	}

	log.Debugf("collected %d units from %s feed", len(units), feed)
	return units, nil
}

func (h *HackerNews) getItem(ctx context.Context, id int64) (*item, error) {
	var it item
	url := fmt.Sprintf("%s/item/%d.json", h.baseURL, id)
	if err := lphttp.GetJSON(ctx, url, &it); err != nil {
		return nil, errors.Wrapf(err, "failed to get item %d", id)
	}
	return &it, nil
}

// unitFromItem converts an API item to a text unit, nil when the item has
// nothing worth scoring.
func unitFromItem(it *item) *data.TextUnit {
	if it == nil || it.ID == 0 || it.Deleted || it.Dead {
		return nil
	}

	var content string
	switch it.Type {
	case "story":
		content = strings.TrimSpace(it.Title)
		if txt := cleanText(it.Text); txt != "" {
			content = strings.TrimSpace(content + "\n\n" + txt)
		}
	case "comment":
		content = cleanText(it.Text)
	default:
		return nil
	}
	if content == "" {
		return nil
	}

	u := &data.TextUnit{
		ID:        fmt.Sprintf("%s-%d", PlatformHackerNews, it.ID),
		Platform:  PlatformHackerNews,
		Author:    it.By,
		CreatedAt: time.Unix(it.Time, 0).UTC(),
		Content:   content,
	}
	if it.Parent > 0 {
		u.ParentID = fmt.Sprintf("%s-%d", PlatformHackerNews, it.Parent)
	}
	return u
}

// cleanText strips the API's embedded HTML down to plain text.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = paraRegEx.ReplaceAllString(s, "\n")
	s = tagRegEx.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
