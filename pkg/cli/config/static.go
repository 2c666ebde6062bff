package config

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/frontend"
	"github.com/secmon-lab/deskrelay/pkg/service/asset"
	"github.com/urfave/cli/v3"
)

// Static selects where the client page is served from. The embedded build is used unless a bucket is set.
type Static struct {
	bucket string
	prefix string
}

func (x *Static) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "static-bucket",
			Usage:       "Cloud Storage bucket holding the client page",
			Category:    "Static",
			Sources:     cli.EnvVars("DESKRELAY_STATIC_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "static-prefix",
			Usage:       "Object prefix of the client page in the bucket",
			Category:    "Static",
			Sources:     cli.EnvVars("DESKRELAY_STATIC_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

func (x Static) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

func (x *Static) Configure(ctx context.Context) (asset.Store, error) {
	if x.bucket != "" {
		store, err := asset.NewBucket(ctx, x.bucket, x.prefix)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open static bucket", goerr.V("bucket", x.bucket))
		}
		return store, nil
	}

	staticFS, err := fs.Sub(frontend.StaticFiles, "dist")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to bind dist dir for static")
	}
	return asset.NewFS(staticFS), nil
}
