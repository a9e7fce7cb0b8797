package main

import (
	"fmt"
	"time"

	"github.com/mchmarny/lingopulse/pkg/collect"
	"github.com/mchmarny/lingopulse/pkg/data"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var (
	feedFlag = &cli.StringFlag{
		Name:  "feed",
		Usage: fmt.Sprintf("Story feed to collect (%s or %s)", collect.FeedTop, collect.FeedNew),
		Value: collect.FeedTop,
	}

	storyLimitFlag = &cli.IntFlag{
		Name:  "stories",
		Usage: "Max number of stories to collect",
		Value: 100,
	}

	commentLimitFlag = &cli.IntFlag{
		Name:  "comments",
		Usage: "Max number of top-level comments to collect per story (0 disables)",
		Value: 0,
	}

	collectCmd = &cli.Command{
		Name:    "collect",
		Aliases: []string{"c"},
		Usage:   "Collect text units from Hacker News into the store",
		Action:  cmdCollect,
		Flags: []cli.Flag{
			feedFlag,
			storyLimitFlag,
			commentLimitFlag,
		},
	}
)

type CollectResult struct {
	Feed      string `json:"feed"`
	Collected int    `json:"collected"`
	Saved     int    `json:"saved"`
	Duration  string `json:"duration"`
}

func cmdCollect(c *cli.Context) error {
	start := time.Now()
	feed := c.String(feedFlag.Name)

	h := collect.NewHackerNews(
		collect.WithStoryLimit(c.Int(storyLimitFlag.Name)),
		collect.WithCommentLimit(c.Int(commentLimitFlag.Name)),
	)

	units, err := h.Collect(c.Context, feed)
	if err != nil {
		return errors.Wrap(err, "failed to collect units")
	}

	db := getDBOrFail(getConfigOrFail())
	defer db.Close()

	saved, err := data.SaveTextUnits(c.Context, db, units)
	if err != nil {
		return errors.Wrap(err, "failed to save units")
	}

	res := &CollectResult{
		Feed:      feed,
		Collected: len(units),
		Saved:     saved,
		Duration:  time.Since(start).String(),
	}
	if err := getEncoder().Encode(res); err != nil {
		return errors.Wrapf(err, "error encoding result: %+v", res)
	}
	return nil
}
