package main

import (
	"github.com/mchmarny/lingopulse/pkg/auth"
	"github.com/mchmarny/lingopulse/pkg/config"
	"github.com/mchmarny/lingopulse/pkg/data"
	"github.com/mchmarny/lingopulse/pkg/dimension"
	"github.com/mchmarny/lingopulse/pkg/infer"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Window start date (YYYY-MM-DD)",
	}

	untilFlag = &cli.StringFlag{
		Name:  "until",
		Usage: "Window end date, inclusive (YYYY-MM-DD)",
	}

	windowFlag = &cli.StringFlag{
		Name:  "window",
		Usage: "Named window from config, instead of --since/--until",
	}

	withModelsFlag = &cli.BoolFlag{
		Name:  "with-models",
		Usage: "Enables the model-backed dimensions (requires inference endpoint)",
	}

	classifyLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Max number of units to classify this run (0 = all)",
	}

	classifyCmd = &cli.Command{
		Name:    "classify",
		Aliases: []string{"cl"},
		Usage:   "Score unclassified units and store their classifications",
		Action:  cmdClassify,
		Flags: []cli.Flag{
			sinceFlag,
			untilFlag,
			windowFlag,
			withModelsFlag,
			classifyLimitFlag,
		},
	}
)

// resolveWindow picks the date range from --since/--until or a named
// config window.
func resolveWindow(c *cli.Context, cfg *config.Config) (since, until string, err error) {
	since = c.String(sinceFlag.Name)
	until = c.String(untilFlag.Name)
	if name := c.String(windowFlag.Name); name != "" {
		w, err := cfg.GetWindow(name)
		if err != nil {
			return "", "", err
		}
		return w.Since, w.Until, nil
	}
	if since == "" || until == "" {
		return "", "", errors.New("either --since and --until, or --window, is required")
	}
	return since, until, nil
}

func cmdClassify(c *cli.Context) error {
	cfg := getConfigOrFail()
	since, until, err := resolveWindow(c, cfg)
	if err != nil {
		return err
	}

	withModels := c.Bool(withModelsFlag.Name)
	vectorizer, err := makeVectorizer(c, cfg, withModels)
	if err != nil {
		return err
	}

	db := getDBOrFail(cfg)
	defer db.Close()

	res, err := data.ClassifyUnits(c.Context, db, vectorizer, data.ClassifyOptions{
		Since:          since,
		Until:          until,
		WithModels:     withModels,
		BatchSize:      cfg.Batch.Size,
		ErrorThreshold: cfg.Batch.ErrorThreshold,
		Limit:          c.Int(classifyLimitFlag.Name),
	})
	if err != nil {
		return errors.Wrap(err, "classification run failed")
	}

	if err := getEncoder().Encode(res); err != nil {
		return errors.Wrapf(err, "error encoding result: %+v", res)
	}
	return nil
}

func makeVectorizer(c *cli.Context, cfg *config.Config, withModels bool) (*dimension.Vectorizer, error) {
	if !withModels {
		return dimension.NewVectorizer(nil, cfg.Inference.Models), nil
	}

	if cfg.Inference.Endpoint == "" {
		return nil, errors.New("inference endpoint not configured, set inference.endpoint in config")
	}

	token, err := auth.GetToken()
	if err != nil {
		if !errors.Is(err, auth.ErrNoToken) {
			return nil, err
		}
		log.Debug("no inference token stored, using unauthenticated client")
		token = ""
	}

	scorer, err := infer.New(c.Context, cfg.Inference.Endpoint, token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create inference client")
	}
	return dimension.NewVectorizer(scorer, cfg.Inference.Models), nil
}
