package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/hafizhrmd/cropscan/internal/application"
	domain "github.com/hafizhrmd/cropscan/internal/domain/analysis"
	"github.com/hafizhrmd/cropscan/internal/domain/classifyerrors"
)

// Service implements use-cases untuk analysis pipeline.
// Safe for concurrent use; all shared state lives behind the injected ports.
type Service struct {
	Repo       domain.Repository
	Classifier domain.Classifier
	Images     domain.ImageStore
	Failures   classifyerrors.Repository // optional, may be nil
	Clock      application.Clock
}

// AnalyzeResult is what POST /api/analyze returns: the persisted record plus
// the raw model verdict echoed back for the frontend.
type AnalyzeResult struct {
	*domain.Analysis
	RawAnalysis domain.Classification `json:"raw_analysis"`
}

// Analyze runs the whole pipeline: store the upload, classify it, normalize
// the verdict and append it to history. A failing model call does not fail the
// request; a failing image write or history insert does.
func (s *Service) Analyze(ctx context.Context, originalName string, file io.Reader) (*AnalyzeResult, error) {
	id := uuid.New().String()
	ext := filepath.Ext(originalName)
	filename := id + ext

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.Images.Save(ctx, filename, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("store image %s: %w", filename, err)
	}

	raw, cerr := s.Classifier.Classify(ctx, data, contentType)
	if cerr != nil {
		log.Printf("classification failed for %s: %v", filename, cerr)
		if s.Failures != nil {
			if ferr := s.Failures.Save(ctx, &classifyerrors.ClassifyFailure{
				AnalysisID: id,
				Message:    cerr.Error(),
				CreatedAt:  s.Clock.Now(),
			}); ferr != nil {
				log.Printf("failure audit write error for %s: %v", id, ferr)
			}
		}
	}

	record := domain.Normalize(raw, domain.AnalysisID(id), filename, s.Clock.Now().UnixMilli())
	if err := s.Repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist analysis %s: %w", id, err)
	}

	return &AnalyzeResult{Analysis: record, RawAnalysis: raw}, nil
}

// History returns every record, newest first.
func (s *Service) History(ctx context.Context) ([]*domain.Analysis, error) {
	return s.Repo.ListAll(ctx)
}

// Clear wipes the whole history. Irreversible.
func (s *Service) Clear(ctx context.Context) error {
	return s.Repo.DeleteAll(ctx)
}

// Image opens a previously stored upload by its generated filename.
func (s *Service) Image(ctx context.Context, filename string) (io.ReadCloser, error) {
	return s.Images.Open(ctx, filename)
}
