package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tracelens/backend/internal/client"
	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/db"
	"github.com/tracelens/backend/internal/model"
)

var ErrNotIndexed = errors.New("issue has no stored embedding")

const defaultSimilarLimit = 5

// SimilarService maintains per-workspace embeddings of completed analyses
// and answers nearest-neighbour lookups over them.
type SimilarService struct {
	repo           *db.Postgres
	defaultKey     string
	embeddingModel string
}

func NewSimilarService(repo *db.Postgres, cfg config.AnalysisConfig) *SimilarService {
	return &SimilarService{
		repo:           repo,
		defaultKey:     cfg.APIKey,
		embeddingModel: cfg.EmbeddingModel,
	}
}

func (s *SimilarService) EnsureSchema(ctx context.Context) error {
	return s.repo.EnsureEmbeddingSchema(ctx)
}

// IndexAnalysis embeds the analysis summary and upserts it under the
// issue's workspace. Called after every completed analysis.
func (s *SimilarService) IndexAnalysis(ctx context.Context, ws *model.Workspace, analysis *model.AnalysisResult) error {
	text := strings.TrimSpace(analysis.Summary + "\n" + analysis.RootCause)
	if text == "" {
		return nil
	}

	apiKey := ws.ModelAPIKey
	if apiKey == "" {
		apiKey = s.defaultKey
	}
	if apiKey == "" {
		return fmt.Errorf("%w: model API key missing", ErrNotConfigured)
	}

	embedder, err := client.NewEmbeddingClient(ctx, apiKey, s.embeddingModel)
	if err != nil {
		return err
	}

	vector, modelName, err := embedder.EmbedText(ctx, text)
	if err != nil {
		return err
	}

	id, err := s.repo.UpsertIssueEmbedding(ctx, analysis.IssueID, ws.ID, analysis.Summary, modelName, vector)
	if err != nil {
		return err
	}
	log.Printf("Indexed analysis embedding %d for issue %s", id, analysis.IssueID)
	return nil
}

// FindSimilar ranks previously analyzed issues in the workspace by cosine
// similarity to the given issue's stored embedding.
func (s *SimilarService) FindSimilar(ctx context.Context, ws *model.Workspace, issueID string, limit int) ([]model.SimilarIssue, error) {
	if limit <= 0 {
		limit = defaultSimilarLimit
	}

	vector, err := s.repo.GetIssueEmbedding(ctx, issueID, ws.ID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotIndexed
		}
		return nil, err
	}

	return s.repo.FindSimilarIssues(ctx, ws.ID, issueID, vector, limit)
}
