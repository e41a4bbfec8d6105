// Command draftpipe runs the authoring pipeline end to end: open a session,
// fill fields, stage a file from disk, and publish. External collaborators
// degrade to in-process stand-ins when not configured, so the demo runs
// without any infrastructure.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/stagecraft/draftpipe/internal/clients/catalogapi"
	"github.com/stagecraft/draftpipe/internal/config"
	"github.com/stagecraft/draftpipe/internal/domain/catalog"
	"github.com/stagecraft/draftpipe/internal/logger"
	"github.com/stagecraft/draftpipe/internal/preview"
	"github.com/stagecraft/draftpipe/internal/repositories/draftstore"
	"github.com/stagecraft/draftpipe/internal/services/draft"
	"github.com/stagecraft/draftpipe/internal/services/media"
	"github.com/stagecraft/draftpipe/internal/uploader"
	"github.com/stagecraft/draftpipe/internal/uuid"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	// Try Redis for draft persistence, fall back to in-memory
	var kv draftstore.KV = draftstore.NewMemoryKV()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Msg("redis unavailable, using in-memory draft store")
	} else {
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
		kv = draftstore.NewRedisKV(&draftstore.RedisKVConfig{Client: redisClient})
		defer func() {
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close redis connection")
			}
		}()
	}
	cancel()

	// Real object storage when configured, local stand-in otherwise
	var uploads uploader.Client
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.PublicBaseURL != "" {
		s3Client, s3Err := uploader.NewS3Client(&uploader.S3Config{
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Endpoint:        cfg.Storage.Endpoint,
			Bucket:          cfg.Storage.Bucket,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			Logger:          &log,
		})
		if s3Err != nil {
			log.Fatal().Err(s3Err).Msg("failed to create S3 uploader")
		}
		uploads = s3Client
		log.Info().Str("bucket", cfg.Storage.Bucket).Msg("using S3 object storage")
	} else {
		log.Warn().Msg("no storage credentials, uploads resolve to local demo URLs")
		uploads = &demoUploader{ids: uuid.NewGoogleUUIDGenerator()}
	}

	svc := draft.NewService(&draft.ServiceConfig{
		Store: draftstore.NewStore(&draftstore.StoreConfig{
			KV:     kv,
			Logger: &log,
		}),
		Uploader:           uploads,
		API:                &echoAPI{ids: uuid.NewGoogleUUIDGenerator()},
		Previews:           preview.NewInMemoryAllocator(&preview.InMemoryAllocatorConfig{Logger: &log}),
		AcceptedImageTypes: cfg.Upload.AcceptedImageTypes,
		MaxFileBytes:       cfg.Upload.MaxFileBytes,
		Logger:             &log,
	})

	if err := run(context.Background(), svc, os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("demo run failed")
	}
}

// run walks one authoring flow: hydrate, mutate, optionally stage the files
// given on the command line, publish.
func run(ctx context.Context, svc draft.Service, imagePaths []string) error {
	out, err := svc.OpenSession(ctx, &draft.OpenSessionInput{})
	if err != nil {
		return err
	}
	session := out.Session
	defer session.Close()

	if err := session.SetField(ctx, draft.FieldTitle, "Weathered Atlas"); err != nil {
		return err
	}
	if err := session.SetField(ctx, draft.FieldSlug, "weathered-atlas"); err != nil {
		return err
	}
	if err := session.SetField(ctx, draft.FieldSummary, "A demonstration entity."); err != nil {
		return err
	}
	if err := session.SetField(ctx, draft.FieldPriceCents, 2500); err != nil {
		return err
	}

	for i, path := range imagePaths {
		file, readErr := readStagedFile(path)
		if readErr != nil {
			return readErr
		}
		if i == 0 {
			if err := session.StageCoverFile(ctx, file); err != nil {
				return err
			}
			continue
		}
		item := session.Media().AddItem(catalog.KindImage)
		if err := session.Media().StageLocalFile(item.ID, file, media.SlotPrimary); err != nil {
			return err
		}
	}
	session.Checkpoint(ctx)

	result := session.Publish(ctx)
	switch result.Status {
	case draft.SubmitSuccess:
		fmt.Printf("Published entity %s\n", result.Item.ID)
	case draft.SubmitInvalid:
		fmt.Println("Draft is invalid:")
		for field, msgs := range result.FieldErrors {
			fmt.Printf("  %s: %s\n", field, strings.Join(msgs, "; "))
		}
	case draft.SubmitFailed:
		fmt.Printf("Submission failed (%s): %s\n", result.ErrorCode, result.Message)
	}

	return nil
}

func readStagedFile(path string) (*catalog.StagedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &catalog.StagedFile{
		Name:        filepath.Base(path),
		ContentType: contentTypeFor(path),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// demoUploader stands in for object storage when none is configured.
type demoUploader struct {
	ids uuid.Generator
}

func (u *demoUploader) Upload(_ context.Context, file *catalog.StagedFile) (*uploader.Result, error) {
	return &uploader.Result{
		URL: "https://demo.invalid/media/" + u.ids.New() + "/" + file.Name,
	}, nil
}

// echoAPI stands in for the remote catalog API: it accepts every payload and
// echoes it back with a fresh id.
type echoAPI struct {
	ids uuid.Generator
}

func (a *echoAPI) Create(_ context.Context, payload *catalog.ItemPayload) (*catalog.Item, error) {
	now := time.Now().UTC()
	return &catalog.Item{
		ID:          a.ids.New(),
		ItemPayload: *payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (a *echoAPI) Update(_ context.Context, id string, payload *catalog.ItemPayload) (*catalog.Item, error) {
	return &catalog.Item{
		ID:          id,
		ItemPayload: *payload,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

func (a *echoAPI) GetByID(_ context.Context, id string) (*catalog.Item, error) {
	return nil, fmt.Errorf("echo api has no stored entity %q", id)
}

var _ catalogapi.Client = (*echoAPI)(nil)
var _ uploader.Client = (*demoUploader)(nil)
