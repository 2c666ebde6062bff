package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/cli/config"
	httpctrl "github.com/secmon-lab/deskrelay/pkg/controller/http"
	"github.com/secmon-lab/deskrelay/pkg/usecase"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var appCfg config.App
	var repoCfg config.Repository
	var oauthCfg config.OAuth
	var deskCfg config.Desk
	var llmCfg config.LLM
	var chatCfg config.GoogleChat
	var slackCfg config.Slack
	var staticCfg config.Static

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("DESKRELAY_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, oauthCfg.Flags()...)
	flags = append(flags, deskCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, chatCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, staticCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Configuration",
				"app", appCfg,
				"repository", repoCfg,
				"oauth", oauthCfg,
				"desk", deskCfg,
				"llm", llmCfg,
				"google_chat", chatCfg,
				"slack", slackCfg,
				"static", staticCfg,
			)

			relay, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load relay configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			oauthSvc, err := oauthCfg.Configure()
			if err != nil {
				return err
			}

			tickets, approvals, err := deskCfg.Configure()
			if err != nil {
				return err
			}

			ucOpts := []usecase.Option{usecase.WithRelayConfig(relay)}
			if approvals != nil {
				ucOpts = append(ucOpts, usecase.WithApprovalService(approvals))
			} else {
				logging.Default().Info("Approval API not configured, /assent is disabled")
			}

			llmSvc, err := llmCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if llmSvc != nil {
				ucOpts = append(ucOpts, usecase.WithLLM(llmSvc))
			} else {
				logging.Default().Warn("LLM not configured, chat bots are disabled")
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlackService(slackSvc))
			}

			uc := usecase.New(repo, oauthSvc, tickets, ucOpts...)

			assets, err := staticCfg.Configure(ctx)
			if err != nil {
				return err
			}
			httpOpts := []httpctrl.Options{httpctrl.WithAssets(assets)}

			verifier, err := chatCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if verifier != nil {
				httpOpts = append(httpOpts, httpctrl.WithChatVerifier(verifier))
				logging.Default().Info("Google Chat token verification enabled")
			} else {
				logging.Default().Warn("Google Chat audience not configured, chat events are not verified")
			}

			if uc.Slack != nil {
				slackWebhookHandler := httpctrl.NewSlackWebhookHandler(uc.Slack)
				httpOpts = append(httpOpts, httpctrl.WithSlackWebhook(slackWebhookHandler, slackCfg.SigningSecret()))
				logging.Default().Info("Slack webhook handler enabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
