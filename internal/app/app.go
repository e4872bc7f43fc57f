package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MaggPerez/stututor-backend/internal/config"
	"github.com/MaggPerez/stututor-backend/internal/core"
	db "github.com/MaggPerez/stututor-backend/internal/core/database"
	"github.com/MaggPerez/stututor-backend/internal/core/extract"
	"github.com/MaggPerez/stututor-backend/internal/core/llm"
	objectclient "github.com/MaggPerez/stututor-backend/internal/core/object-client"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	useReadability := false
	documentExtractor := extract.NewDocconvExtractor(useReadability)

	server := NewServer(cfg, dbClient, objClient, documentExtractor, llmProvider)

	return &App{DBClient: dbClient, ObjectClient: objClient, Server: server}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
