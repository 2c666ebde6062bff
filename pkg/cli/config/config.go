package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/deskrelay/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// AppConfig is the optional TOML file tuning the relay. Unset values keep their defaults.
type AppConfig struct {
	Tickets  TicketsConfig  `toml:"tickets"`
	Messages MessagesConfig `toml:"messages"`
}

// TicketsConfig tunes ticket queries
type TicketsConfig struct {
	Fields          []string `toml:"fields"`
	ListRowCount    int      `toml:"list_row_count"`
	ChatRowCount    int      `toml:"chat_row_count"`
	ChatTicketLimit int      `toml:"chat_ticket_limit"`
	UIBase          string   `toml:"ui_base"`
}

// MessagesConfig holds the fixed texts of the chat bots
type MessagesConfig struct {
	SystemPrompt      string `toml:"system_prompt"`
	MaintenanceNotice string `toml:"maintenance_notice"`
	Greeting          string `toml:"greeting"`
	UnsupportedReply  string `toml:"unsupported_reply"`
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	counts := map[string]int{
		"list_row_count":    a.Tickets.ListRowCount,
		"chat_row_count":    a.Tickets.ChatRowCount,
		"chat_ticket_limit": a.Tickets.ChatTicketLimit,
	}
	for key, v := range counts {
		if v < 0 {
			return goerr.Wrap(ErrInvalidRowCount, "invalid tickets config", goerr.V(FlagKey, key), goerr.V(ValueKey, v))
		}
	}

	relay := a.ToDomainRelay()
	if relay.ChatTicketLimit > relay.ChatRowCount {
		return goerr.Wrap(ErrInvalidTicketLimit, "invalid tickets config",
			goerr.V("chat_ticket_limit", relay.ChatTicketLimit),
			goerr.V("chat_row_count", relay.ChatRowCount),
		)
	}

	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToDomainRelay overlays the configured values on the defaults
func (a *AppConfig) ToDomainRelay() *domainConfig.Relay {
	relay := domainConfig.DefaultRelay()

	if len(a.Tickets.Fields) > 0 {
		relay.TicketFields = append([]string(nil), a.Tickets.Fields...)
	}
	if a.Tickets.ListRowCount > 0 {
		relay.ListRowCount = a.Tickets.ListRowCount
	}
	if a.Tickets.ChatRowCount > 0 {
		relay.ChatRowCount = a.Tickets.ChatRowCount
	}
	if a.Tickets.ChatTicketLimit > 0 {
		relay.ChatTicketLimit = a.Tickets.ChatTicketLimit
	}
	relay.TicketUIBase = a.Tickets.UIBase

	setIfNotEmpty(&relay.SystemPrompt, a.Messages.SystemPrompt)
	setIfNotEmpty(&relay.MaintenanceNotice, a.Messages.MaintenanceNotice)
	setIfNotEmpty(&relay.Greeting, a.Messages.Greeting)
	setIfNotEmpty(&relay.UnsupportedReply, a.Messages.UnsupportedReply)

	return relay
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// App holds the path of the optional TOML file
type App struct {
	path string
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the relay configuration TOML file",
			Sources:     cli.EnvVars("DESKRELAY_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x App) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure returns the relay configuration. The defaults are used without a file.
func (x *App) Configure() (*domainConfig.Relay, error) {
	if x.path == "" {
		return domainConfig.DefaultRelay(), nil
	}

	cfg, err := LoadAppConfiguration(x.path)
	if err != nil {
		return nil, err
	}
	return cfg.ToDomainRelay(), nil
}
