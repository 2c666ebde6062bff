package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/cli/config"
	"github.com/secmon-lab/deskrelay/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdToken() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Inspect the OAuth authorization of the relay",
		Commands: []*cli.Command{
			cmdTokenURL(),
			cmdTokenStatus(),
		},
	}
}

func cmdTokenURL() *cli.Command {
	var oauthCfg config.OAuth

	return &cli.Command{
		Name:  "url",
		Usage: "Print the consent URL an administrator opens to authorize the relay",
		Flags: oauthCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := oauthCfg.Configure()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(writer(c), svc.AuthURL())
			return err
		},
	}
}

func cmdTokenStatus() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "status",
		Usage: "Show which tokens are stored",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				_ = repo.Close()
			}()

			status, err := usecase.NewTokenUseCase(repo, nil).Status(ctx)
			if err != nil {
				return err
			}

			printTokenStatus(writer(c), status)
			return nil
		},
	}
}

func writer(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func printTokenStatus(w io.Writer, status *usecase.TokenStatus) {
	ok := color.New(color.FgGreen).SprintFunc()
	ng := color.New(color.FgRed).SprintFunc()

	mark := func(present bool) string {
		if present {
			return ok("stored")
		}
		return ng("missing")
	}

	fmt.Fprintf(w, "access_token:  %s\n", mark(status.HasAccessToken))
	fmt.Fprintf(w, "refresh_token: %s\n", mark(status.HasRefreshToken))
	if !status.HasRefreshToken {
		fmt.Fprintln(w, color.YellowString("Open the URL printed by `deskrelay token url` to authorize the relay."))
	}
}
