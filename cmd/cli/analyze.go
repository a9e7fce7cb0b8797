package main

import (
	"context"
	"sort"

	"github.com/mchmarny/lingopulse/pkg/config"
	"github.com/mchmarny/lingopulse/pkg/data"
	"github.com/mchmarny/lingopulse/pkg/dimension"
	"github.com/mchmarny/lingopulse/pkg/stats"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	dimensionFlag = &cli.StringFlag{
		Name:     "dimension",
		Usage:    "Dimension to analyze (e.g. certainty_collapse)",
		Required: true,
	}

	targetSinceFlag = &cli.StringFlag{
		Name:  "target-since",
		Usage: "Target window start date to assess against the baseline (YYYY-MM-DD)",
	}

	targetUntilFlag = &cli.StringFlag{
		Name:  "target-until",
		Usage: "Target window end date, inclusive (YYYY-MM-DD)",
	}

	sinceBFlag = &cli.StringFlag{
		Name:     "since-b",
		Usage:    "Second window start date (YYYY-MM-DD)",
		Required: true,
	}

	untilBFlag = &cli.StringFlag{
		Name:     "until-b",
		Usage:    "Second window end date, inclusive (YYYY-MM-DD)",
		Required: true,
	}

	controlsFlag = &cli.IntFlag{
		Name:  "controls",
		Usage: "Number of random control windows for the non-parametric check (0 disables)",
	}

	spanSinceFlag = &cli.StringFlag{
		Name:  "span-since",
		Usage: "Full series start for drawing control windows (YYYY-MM-DD)",
	}

	spanUntilFlag = &cli.StringFlag{
		Name:  "span-until",
		Usage: "Full series end for drawing control windows (YYYY-MM-DD)",
	}

	analyzeCmd = &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Statistical analysis over classified units",
		Subcommands: []*cli.Command{
			{
				Name:    "baseline",
				Aliases: []string{"b"},
				Usage:   "Compute a dimension's baseline distribution, optionally assessing a target window against it",
				Action:  cmdAnalyzeBaseline,
				Flags: []cli.Flag{
					dimensionFlag,
					sinceFlag,
					untilFlag,
					windowFlag,
					targetSinceFlag,
					targetUntilFlag,
				},
			},
			{
				Name:    "coherence",
				Aliases: []string{"c"},
				Usage:   "Compute the daily event coherence index across all dimensions",
				Action:  cmdAnalyzeCoherence,
				Flags: []cli.Flag{
					sinceFlag,
					untilFlag,
					windowFlag,
				},
			},
			{
				Name:    "validate",
				Aliases: []string{"v"},
				Usage:   "Statistically compare a dimension between two windows",
				Action:  cmdAnalyzeValidate,
				Flags: []cli.Flag{
					dimensionFlag,
					sinceFlag,
					untilFlag,
					sinceBFlag,
					untilBFlag,
					controlsFlag,
					spanSinceFlag,
					spanUntilFlag,
				},
			},
		},
	}
)

type BaselineResult struct {
	Dimension  dimension.Dimension `json:"dimension"`
	Since      string              `json:"since"`
	Until      string              `json:"until"`
	Baseline   *stats.Baseline     `json:"baseline"`
	Target     *config.Window      `json:"target,omitempty"`
	Assessment *stats.Assessment   `json:"assessment,omitempty"`
}

func cmdAnalyzeBaseline(c *cli.Context) error {
	cfg := getConfigOrFail()
	since, until, err := resolveWindow(c, cfg)
	if err != nil {
		return err
	}
	dim := dimension.Dimension(c.String(dimensionFlag.Name))

	db := getDBOrFail(cfg)
	defer db.Close()

	aggs, err := data.QueryDailyAggregates(c.Context, db, dim, since, until)
	if err != nil {
		return err
	}
	samples := make([]float64, 0, len(aggs))
	for _, a := range aggs {
		samples = append(samples, a.Mean)
	}

	b, err := stats.NewBaseline(samples)
	if err != nil {
		return errors.Wrapf(err, "no baseline data for %s in [%s,%s]", dim, since, until)
	}

	res := &BaselineResult{
		Dimension: dim,
		Since:     since,
		Until:     until,
		Baseline:  b,
	}

	tSince, tUntil := c.String(targetSinceFlag.Name), c.String(targetUntilFlag.Name)
	if tSince != "" && tUntil != "" {
		targetAggs, err := data.QueryDailyAggregates(c.Context, db, dim, tSince, tUntil)
		if err != nil {
			return err
		}
		if len(targetAggs) == 0 {
			return errors.Errorf("no target data for %s in [%s,%s]", dim, tSince, tUntil)
		}
		sum := 0.0
		for _, a := range targetAggs {
			sum += a.Mean
		}
		res.Target = &config.Window{Since: tSince, Until: tUntil}
		res.Assessment = b.Assess(sum / float64(len(targetAggs)))
	}

	if err := getEncoder().Encode(res); err != nil {
		return errors.Wrapf(err, "error encoding result: %+v", res)
	}
	return nil
}

func cmdAnalyzeCoherence(c *cli.Context) error {
	cfg := getConfigOrFail()
	since, until, err := resolveWindow(c, cfg)
	if err != nil {
		return err
	}

	db := getDBOrFail(cfg)
	defer db.Close()

	days, series, err := alignedDailySeries(c.Context, db, since, until)
	if err != nil {
		return err
	}

	samples, err := stats.EventCoherence(days, series, cfg.Analysis)
	if err != nil {
		return errors.Wrap(err, "failed to compute event coherence")
	}

	if err := getEncoder().Encode(samples); err != nil {
		return errors.Wrap(err, "error encoding result")
	}
	return nil
}

type ValidateResult struct {
	Dimension  dimension.Dimension  `json:"dimension"`
	WindowA    config.Window        `json:"window_a"`
	WindowB    config.Window        `json:"window_b"`
	Comparison *stats.Comparison    `json:"comparison"`
	Control    *stats.ControlResult `json:"control,omitempty"`
}

func cmdAnalyzeValidate(c *cli.Context) error {
	cfg := getConfigOrFail()
	dim := dimension.Dimension(c.String(dimensionFlag.Name))
	sinceA, untilA := c.String(sinceFlag.Name), c.String(untilFlag.Name)
	sinceB, untilB := c.String(sinceBFlag.Name), c.String(untilBFlag.Name)
	if sinceA == "" || untilA == "" {
		return errors.New("--since and --until are required")
	}

	db := getDBOrFail(cfg)
	defer db.Close()

	a, err := data.GetDimensionScores(c.Context, db, dim, sinceA, untilA)
	if err != nil {
		return err
	}
	b, err := data.GetDimensionScores(c.Context, db, dim, sinceB, untilB)
	if err != nil {
		return err
	}

	cmp, err := stats.Compare(a, b)
	if err != nil {
		return errors.Wrap(err, "failed to compare windows")
	}

	res := &ValidateResult{
		Dimension:  dim,
		WindowA:    config.Window{Since: sinceA, Until: untilA},
		WindowB:    config.Window{Since: sinceB, Until: untilB},
		Comparison: cmp,
	}

	if controls := c.Int(controlsFlag.Name); controls > 0 {
		ctrl, err := controlCheck(c.Context, db, dim, sinceB, untilB,
			c.String(spanSinceFlag.Name), c.String(spanUntilFlag.Name), controls)
		if err != nil {
			return err
		}
		res.Control = ctrl
	}

	if err := getEncoder().Encode(res); err != nil {
		return errors.Wrapf(err, "error encoding result: %+v", res)
	}
	return nil
}

// controlCheck bounds the target window's daily means against random
// equal-length windows drawn from the span.
func controlCheck(ctx context.Context, db *data.DB, dim dimension.Dimension, targetSince, targetUntil, spanSince, spanUntil string, controls int) (*stats.ControlResult, error) {
	if spanSince == "" || spanUntil == "" {
		return nil, errors.New("--span-since and --span-until are required with --controls")
	}

	aggs, err := data.QueryDailyAggregates(ctx, db, dim, spanSince, spanUntil)
	if err != nil {
		return nil, err
	}

	series := make([]float64, 0, len(aggs))
	targetStart, targetEnd := -1, -1
	for i, a := range aggs {
		series = append(series, a.Mean)
		if a.Day >= targetSince && targetStart < 0 {
			targetStart = i
		}
		if a.Day <= targetUntil {
			targetEnd = i
		}
	}
	if targetStart < 0 || targetEnd < targetStart {
		return nil, errors.Errorf("target window [%s,%s] has no data inside span", targetSince, targetUntil)
	}

	return stats.ControlWindowCheck(series, targetStart, targetEnd-targetStart+1, controls, nil)
}

// alignedDailySeries builds one aligned daily series per dimension over the
// window, keeping only days every dimension has data for.
func alignedDailySeries(ctx context.Context, db *data.DB, since, until string) ([]string, [][]float64, error) {
	byDim := make([]map[string]float64, len(dimension.Dimensions))
	for i, dim := range dimension.Dimensions {
		aggs, err := data.QueryDailyAggregates(ctx, db, dim, since, until)
		if err != nil {
			return nil, nil, err
		}
		byDim[i] = make(map[string]float64, len(aggs))
		for _, a := range aggs {
			byDim[i][a.Day] = a.Mean
		}
	}

	// classified units carry every dimension, so day sets should match;
	// intersect anyway to stay safe against partial windows
	var days []string
	for day := range byDim[0] {
		shared := true
		for _, m := range byDim[1:] {
			if _, ok := m[day]; !ok {
				shared = false
				break
			}
		}
		if shared {
			days = append(days, day)
		}
	}
	sort.Strings(days)
	if len(days) == 0 {
		return nil, nil, errors.Errorf("no classified data in [%s,%s]", since, until)
	}
	log.Debugf("aligned %d days across %d dimensions", len(days), len(dimension.Dimensions))

	series := make([][]float64, len(dimension.Dimensions))
	for i := range series {
		series[i] = make([]float64, len(days))
		for j, day := range days {
			series[i][j] = byDim[i][day]
		}
	}
	return days, series, nil
}
