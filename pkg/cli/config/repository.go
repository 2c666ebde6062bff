package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/domain/interfaces"
	"github.com/secmon-lab/deskrelay/pkg/repository/firestore"
	"github.com/secmon-lab/deskrelay/pkg/repository/memory"
	"github.com/secmon-lab/deskrelay/pkg/repository/redis"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for the token store backend
type Repository struct {
	backend string

	projectID        string
	databaseID       string
	collectionPrefix string

	redisAddr     string
	redisPassword string
	redisDB       int
	redisPrefix   string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Token store backend (firestore, redis or memory)",
			Category:    "Repository",
			Value:       "firestore",
			Sources:     cli.EnvVars("DESKRELAY_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("DESKRELAY_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("DESKRELAY_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the Firestore collection holding the tokens",
			Category:    "Repository",
			Sources:     cli.EnvVars("DESKRELAY_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address host:port (required when using redis backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("DESKRELAY_REDIS_ADDR"),
			Destination: &r.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Repository",
			Sources:     cli.EnvVars("DESKRELAY_REDIS_PASSWORD"),
			Destination: &r.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Repository",
			Sources:     cli.EnvVars("DESKRELAY_REDIS_DB"),
			Destination: &r.redisDB,
		},
		&cli.StringFlag{
			Name:        "redis-key-prefix",
			Usage:       "Prefix of the Redis keys holding the tokens",
			Category:    "Repository",
			Sources:     cli.EnvVars("DESKRELAY_REDIS_KEY_PREFIX"),
			Destination: &r.redisPrefix,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
		slog.String("redis_addr", r.redisAddr),
		slog.Int("redis_db", r.redisDB),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingCredential, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "redis":
		if r.redisAddr == "" {
			return nil, goerr.Wrap(ErrMissingCredential, "redis-addr is required when using redis backend",
				goerr.V(FlagKey, "redis-addr"))
		}
		var opts []redis.Option
		if r.redisPrefix != "" {
			opts = append(opts, redis.WithKeyPrefix(r.redisPrefix))
		}
		repo, err := redis.New(ctx, r.redisAddr, r.redisPassword, r.redisDB, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis repository")
		}
		logging.Default().Info("Using Redis repository", "addr", r.redisAddr, "db", r.redisDB)
		return repo, nil

	case "memory":
		logging.Default().Warn("Using in-memory repository; tokens are lost on restart")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "failed to configure repository", goerr.V(ValueKey, r.backend))
	}
}
