package main

import (
	"database/sql"
	"os"

	"github.com/mchmarny/lingopulse/pkg/data"
	"github.com/mchmarny/lingopulse/pkg/dimension"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	unitIDFlag = &cli.StringFlag{
		Name:     "id",
		Usage:    "Text unit id (e.g. hn-39293821)",
		Required: true,
	}

	cacheFlag = &cli.BoolFlag{
		Name:  "cache",
		Usage: "Recompute and store the aggregates in the period cache",
	}

	cachedFlag = &cli.BoolFlag{
		Name:  "cached",
		Usage: "Read previously cached aggregates instead of recomputing",
	}

	queryCmd = &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "List data query operations",
		Subcommands: []*cli.Command{
			{
				Name:    "unit",
				Aliases: []string{"u"},
				Usage:   "Get a text unit and its classification vector",
				Action:  cmdQueryUnit,
				Flags: []cli.Flag{
					unitIDFlag,
				},
			},
			{
				Name:    "counts",
				Aliases: []string{"n"},
				Usage:   "Store content counts (units, classified, distinct classifications)",
				Action:  cmdQueryCounts,
			},
			{
				Name:    "aggregates",
				Aliases: []string{"a"},
				Usage:   "Per-day mean score and sample count for one dimension",
				Action:  cmdQueryAggregates,
				Flags: []cli.Flag{
					dimensionFlag,
					sinceFlag,
					untilFlag,
					windowFlag,
					cacheFlag,
					cachedFlag,
				},
			},
		},
	}
)

type UnitResult struct {
	Unit             *data.TextUnit    `json:"unit"`
	ClassificationID int64             `json:"classification_id,omitempty"`
	Vector           *dimension.Vector `json:"vector,omitempty"`
}

func writeEmpty() error {
	_, err := os.Stdout.Write([]byte("{}\n"))
	return err
}

func cmdQueryUnit(c *cli.Context) error {
	id := c.String(unitIDFlag.Name)

	db := getDBOrFail(getConfigOrFail())
	defer db.Close()

	unit, err := data.GetTextUnit(c.Context, db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return writeEmpty()
		}
		return errors.Wrap(err, "failed to query unit")
	}

	res := &UnitResult{Unit: unit}
	classID, vec, err := data.GetUnitVector(c.Context, db, id)
	switch {
	case err == nil:
		res.ClassificationID = classID
		res.Vector = vec
	case errors.Is(err, sql.ErrNoRows):
		log.Debugf("unit %s is not classified yet", id)
	default:
		return errors.Wrap(err, "failed to query unit classification")
	}

	if err := getEncoder().Encode(res); err != nil {
		return errors.Wrapf(err, "error encoding: %+v", res)
	}
	return nil
}

func cmdQueryCounts(c *cli.Context) error {
	db := getDBOrFail(getConfigOrFail())
	defer db.Close()

	counts, err := data.CountUnits(c.Context, db)
	if err != nil {
		return errors.Wrap(err, "failed to query counts")
	}

	if err := getEncoder().Encode(counts); err != nil {
		return errors.Wrapf(err, "error encoding: %+v", counts)
	}
	return nil
}

func cmdQueryAggregates(c *cli.Context) error {
	cfg := getConfigOrFail()
	since, until, err := resolveWindow(c, cfg)
	if err != nil {
		return err
	}
	dim := dimension.Dimension(c.String(dimensionFlag.Name))

	db := getDBOrFail(cfg)
	defer db.Close()

	if c.Bool(cacheFlag.Name) {
		n, err := data.CachePeriodAggregates(c.Context, db, dim, since, until)
		if err != nil {
			return errors.Wrap(err, "failed to cache aggregates")
		}
		log.Debugf("cached %d days for %s", n, dim)
	}

	var list []*data.PeriodAggregate
	if c.Bool(cachedFlag.Name) {
		list, err = data.GetCachedAggregates(c.Context, db, dim, since, until)
	} else {
		list, err = data.QueryDailyAggregates(c.Context, db, dim, since, until)
	}
	if err != nil {
		return errors.Wrap(err, "failed to query aggregates")
	}

	if err := getEncoder().Encode(list); err != nil {
		return errors.Wrap(err, "error encoding list")
	}
	return nil
}
