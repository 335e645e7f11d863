package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/repository/file"
	"github.com/secmon-lab/isogap/pkg/repository/firestore"
	"github.com/secmon-lab/isogap/pkg/repository/gcs"
	"github.com/secmon-lab/isogap/pkg/repository/memory"
	"github.com/secmon-lab/isogap/pkg/repository/postgres"
	"github.com/secmon-lab/isogap/pkg/repository/s3"
	"github.com/secmon-lab/isogap/pkg/repository/sqlite"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backend names accepted by --repository-backend
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendGCS       = "gcs"
	BackendS3        = "s3"
)

// Repository holds CLI flags for the durable blob store that keeps the
// submission histories
type Repository struct {
	backend string

	dataDir string

	sqlitePath string

	postgresDSN   string
	postgresTable string

	firestoreProjectID        string
	firestoreDatabaseID       string
	firestoreCollectionPrefix string

	gcsBucket   string
	gcsPrefix   string
	gcsEndpoint string

	s3Bucket    string
	s3Region    string
	s3Endpoint  string
	s3Prefix    string
	s3PathStyle bool
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, file, sqlite, postgres, firestore, gcs or s3)",
			Category:    "Repository",
			Value:       BackendFile,
			Sources:     cli.EnvVars("ISOGAP_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory of the file backend",
			Category:    "Repository",
			Value:       "./data",
			Sources:     cli.EnvVars("ISOGAP_DATA_DIR"),
			Destination: &r.dataDir,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Database file of the sqlite backend",
			Category:    "Repository",
			Value:       "./isogap.db",
			Sources:     cli.EnvVars("ISOGAP_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL connection string (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_POSTGRES_DSN"),
			Destination: &r.postgresDSN,
		},
		&cli.StringFlag{
			Name:        "postgres-table",
			Usage:       "PostgreSQL table name",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_POSTGRES_TABLE"),
			Destination: &r.postgresTable,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_FIRESTORE_PROJECT_ID"),
			Destination: &r.firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Value:       "(default)",
			Sources:     cli.EnvVars("ISOGAP_FIRESTORE_DATABASE_ID"),
			Destination: &r.firestoreDatabaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the Firestore collection name",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.firestoreCollectionPrefix,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (required when using gcs backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_GCS_BUCKET"),
			Destination: &r.gcsBucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix in the Cloud Storage bucket",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_GCS_PREFIX"),
			Destination: &r.gcsPrefix,
		},
		&cli.StringFlag{
			Name:        "gcs-endpoint",
			Usage:       "Cloud Storage endpoint override (emulators only)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_GCS_ENDPOINT"),
			Destination: &r.gcsEndpoint,
		},
		&cli.StringFlag{
			Name:        "s3-bucket",
			Usage:       "S3 bucket (required when using s3 backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_S3_BUCKET"),
			Destination: &r.s3Bucket,
		},
		&cli.StringFlag{
			Name:        "s3-region",
			Usage:       "S3 region",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_S3_REGION"),
			Destination: &r.s3Region,
		},
		&cli.StringFlag{
			Name:        "s3-endpoint",
			Usage:       "S3 compatible endpoint URL",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_S3_ENDPOINT"),
			Destination: &r.s3Endpoint,
		},
		&cli.StringFlag{
			Name:        "s3-prefix",
			Usage:       "Object key prefix in the S3 bucket",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_S3_PREFIX"),
			Destination: &r.s3Prefix,
		},
		&cli.BoolFlag{
			Name:        "s3-path-style",
			Usage:       "Use path style addressing for S3",
			Category:    "Repository",
			Sources:     cli.EnvVars("ISOGAP_S3_PATH_STYLE"),
			Destination: &r.s3PathStyle,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.Int("postgres-dsn.len", len(r.postgresDSN)),
		slog.String("firestore-project-id", r.firestoreProjectID),
		slog.String("gcs-bucket", r.gcsBucket),
		slog.String("s3-bucket", r.s3Bucket),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a blob store based on the configured
// backend. The caller is responsible for calling Close() on it.
func (r *Repository) Configure(ctx context.Context) (interfaces.BlobStore, error) {
	logger := logging.From(ctx)

	switch r.backend {
	case BackendMemory:
		logger.Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	case BackendFile:
		store, err := file.New(r.dataDir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize file repository")
		}
		logger.Info("Using file repository", "data_dir", r.dataDir)
		return store, nil

	case BackendSQLite:
		store, err := sqlite.New(ctx, r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository")
		}
		logger.Info("Using SQLite repository", "path", r.sqlitePath)
		return store, nil

	case BackendPostgres:
		if r.postgresDSN == "" {
			return nil, goerr.New("postgres-dsn is required when using postgres backend")
		}
		var opts []postgres.Option
		if r.postgresTable != "" {
			opts = append(opts, postgres.WithTable(r.postgresTable))
		}
		store, err := postgres.New(ctx, r.postgresDSN, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize postgres repository")
		}
		logger.Info("Using PostgreSQL repository", "table", r.postgresTable)
		return store, nil

	case BackendFirestore:
		if r.firestoreProjectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if r.firestoreCollectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.firestoreCollectionPrefix))
		}
		store, err := firestore.New(ctx, r.firestoreProjectID, r.firestoreDatabaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logger.Info("Using Firestore repository",
			"project_id", r.firestoreProjectID,
			"database_id", r.firestoreDatabaseID,
		)
		return store, nil

	case BackendGCS:
		if r.gcsBucket == "" {
			return nil, goerr.New("gcs-bucket is required when using gcs backend")
		}
		var opts []gcs.Option
		if r.gcsPrefix != "" {
			opts = append(opts, gcs.WithPrefix(r.gcsPrefix))
		}
		if r.gcsEndpoint != "" {
			opts = append(opts, gcs.WithEndpoint(r.gcsEndpoint))
		}
		store, err := gcs.New(ctx, r.gcsBucket, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize gcs repository")
		}
		logger.Info("Using Cloud Storage repository", "bucket", r.gcsBucket)
		return store, nil

	case BackendS3:
		if r.s3Bucket == "" {
			return nil, goerr.New("s3-bucket is required when using s3 backend")
		}
		store, err := s3.New(ctx, s3.Config{
			Bucket:    r.s3Bucket,
			Region:    r.s3Region,
			Endpoint:  r.s3Endpoint,
			Prefix:    r.s3Prefix,
			PathStyle: r.s3PathStyle,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize s3 repository")
		}
		logger.Info("Using S3 repository", "bucket", r.s3Bucket, "region", r.s3Region)
		return store, nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
