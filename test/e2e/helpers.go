//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora-hq/onboardai/internal/api/handlers"
	"github.com/velora-hq/onboardai/internal/repository"
	"github.com/velora-hq/onboardai/internal/server"
	"github.com/velora-hq/onboardai/internal/service"
	"github.com/velora-hq/onboardai/internal/testutil"
)

// E2ETestEnv holds all resources needed for end-to-end tests. The
// server runs with no external providers configured, so every provider
// path exercises its degraded branch.
type E2ETestEnv struct {
	T         *testing.T
	Ctx       context.Context
	PostgresC *testutil.PostgresContainer
	Pool      *pgxpool.Pool
	Server    *httptest.Server
	Seeder    *service.SeedService
	client    *http.Client
}

// APIResponse mirrors the server's response envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// SetupE2EEnv starts a pgvector container, migrates it, and serves the
// full router over httptest.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	intelRepo := repository.NewIntelRepository(pool)
	syncStateRepo := repository.NewSyncStateRepository(pool)

	embeddings := service.NewEmbeddingService(nil, 1536)
	syncSvc := service.NewSyncService(nil, knowledgeRepo, syncStateRepo, embeddings, 6*time.Hour)
	intelSvc := service.NewIntelService(nil, intelRepo)
	briefSvc := service.NewBriefService(nil, knowledgeRepo, intelRepo, nil)
	answerSvc := service.NewAnswerService(nil, embeddings, knowledgeRepo, intelRepo, intelSvc, briefSvc, 5, 5)
	usageSvc := service.NewUsageService(nil)

	router := server.NewRouter(server.RouterConfig{
		DB:           pool,
		AskHandler:   handlers.NewAskHandler(answerSvc),
		BriefHandler: handlers.NewBriefHandler(briefSvc),
		SyncHandler:  handlers.NewSyncHandler(syncSvc),
		IntelHandler: handlers.NewIntelHandler(intelSvc),
		UsageHandler: handlers.NewUsageHandler(usageSvc),
	})

	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:         t,
		Ctx:       ctx,
		PostgresC: pgC,
		Pool:      pool,
		Server:    srv,
		Seeder:    service.NewSeedService(knowledgeRepo, embeddings),
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup tears the environment down.
func (env *E2ETestEnv) Cleanup() {
	env.Server.Close()
	env.Pool.Close()
	if err := env.PostgresC.Terminate(env.Ctx); err != nil {
		env.T.Logf("failed to terminate postgres container: %v", err)
	}
}

// SeedFile loads a seed file into the knowledge base.
func (env *E2ETestEnv) SeedFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		env.T.Fatalf("failed to read seed file: %v", err)
	}
	added, err := env.Seeder.Load(env.Ctx, data)
	if err != nil {
		env.T.Fatalf("failed to seed knowledge: %v", err)
	}
	return added
}

// Get performs a GET request against the test server.
func (env *E2ETestEnv) Get(path string) (*APIResponse, error) {
	resp, err := env.client.Get(env.Server.URL + path)
	if err != nil {
		return nil, err
	}
	return parseResponse(resp)
}

// Post performs a POST request with a JSON body against the test server.
func (env *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}
	resp, err := env.client.Post(env.Server.URL+path, "application/json", reqBody)
	if err != nil {
		return nil, err
	}
	return parseResponse(resp)
}

func parseResponse(resp *http.Response) (*APIResponse, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("status %d: failed to parse response: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, apiResp.Error)
	}
	return &apiResp, nil
}
