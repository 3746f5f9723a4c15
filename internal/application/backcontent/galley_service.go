package backcontent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"go.uber.org/zap"
)

// GalleyServiceConfig holds galley upload limits
type GalleyServiceConfig struct {
	// DownloadURLExpiry is how long presigned download URLs stay valid
	DownloadURLExpiry time.Duration
	// MaxFilesPerUpload caps the files accepted in one request
	MaxFilesPerUpload int
	// MaxPreviewSize caps the XML read for previews
	MaxPreviewSize int64
}

// DefaultGalleyServiceConfig returns the default configuration
func DefaultGalleyServiceConfig() GalleyServiceConfig {
	return GalleyServiceConfig{
		DownloadURLExpiry: time.Hour,
		MaxFilesPerUpload: 20,
		MaxPreviewSize:    20 << 20,
	}
}

// GalleyService stores galley files and their metadata
type GalleyService struct {
	articles submission.ArticleReader
	galleys  submission.GalleyRepository
	storage  ObjectStorage
	renderer JATSRenderer
	config   GalleyServiceConfig
	logger   *zap.Logger
	metrics  Metrics
}

// NewGalleyService creates a new GalleyService
func NewGalleyService(
	articles submission.ArticleReader,
	galleys submission.GalleyRepository,
	storage ObjectStorage,
	renderer JATSRenderer,
	logger *zap.Logger,
) *GalleyService {
	return &GalleyService{
		articles: articles,
		galleys:  galleys,
		storage:  storage,
		renderer: renderer,
		config:   DefaultGalleyServiceConfig(),
		logger:   logger,
		metrics:  NoopMetrics{},
	}
}

// SetConfig sets the service configuration
func (s *GalleyService) SetConfig(config GalleyServiceConfig) {
	s.config = config
}

// SetMetrics replaces the metrics sink
func (s *GalleyService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// Upload validates every file, then writes metadata and objects one by one.
// The upload is all or nothing: a failed write removes the galleys already
// stored by the same call.
func (s *GalleyService) Upload(ctx context.Context, journalID, articleID uuid.UUID, kind string, files []GalleyFile) ([]GalleyResponse, error) {
	label, err := submission.ParseGalleyLabel(kind)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, shared.NewDomainError("NO_FILES", "No files were uploaded")
	}
	if s.config.MaxFilesPerUpload > 0 && len(files) > s.config.MaxFilesPerUpload {
		return nil, shared.NewDomainError("TOO_MANY_FILES",
			fmt.Sprintf("At most %d files can be uploaded at once", s.config.MaxFilesPerUpload))
	}
	if _, err := findArticle(ctx, s.articles, journalID, articleID); err != nil {
		return nil, err
	}

	count, err := s.galleys.CountByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	pending := make([]*submission.Galley, len(files))
	for i, f := range files {
		g, err := submission.NewGalley(journalID, articleID, label, f.Name, f.ContentType, f.Size, int(count)+i)
		if err != nil {
			return nil, err
		}
		pending[i] = g
	}

	stored := make([]*submission.Galley, 0, len(files))
	for i, g := range pending {
		if err := s.galleys.Create(ctx, g); err != nil {
			s.rollback(ctx, journalID, stored)
			return nil, err
		}
		if err := s.storage.Upload(ctx, g.StorageKey, g.ContentType, files[i].Body, g.FileSize); err != nil {
			s.logger.Warn("Failed to store galley object",
				zap.String("galley_id", g.ID.String()),
				zap.Error(err))
			s.deleteMetadata(ctx, journalID, g)
			s.rollback(ctx, journalID, stored)
			return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to store "+g.OriginalName)
		}
		stored = append(stored, g)
	}
	for _, g := range stored {
		s.metrics.GalleyUploaded(string(g.Label), g.FileSize)
	}

	s.logger.Info("Galleys uploaded",
		zap.String("article_id", articleID.String()),
		zap.String("label", string(label)),
		zap.Int("count", len(stored)))
	return ToGalleyResponses(stored), nil
}

// rollback undoes the galleys stored earlier in a failed upload
func (s *GalleyService) rollback(ctx context.Context, journalID uuid.UUID, stored []*submission.Galley) {
	for _, g := range stored {
		s.deleteMetadata(ctx, journalID, g)
		if err := s.storage.DeleteObject(ctx, g.StorageKey); err != nil {
			s.logger.Error("Failed to roll back galley object",
				zap.String("galley_id", g.ID.String()),
				zap.String("storage_key", g.StorageKey),
				zap.Error(err))
		}
	}
}

func (s *GalleyService) deleteMetadata(ctx context.Context, journalID uuid.UUID, g *submission.Galley) {
	if err := s.galleys.Delete(ctx, journalID, g.ID); err != nil {
		s.logger.Error("Failed to roll back galley metadata",
			zap.String("galley_id", g.ID.String()),
			zap.Error(err))
	}
}

// List returns the galleys of an article
func (s *GalleyService) List(ctx context.Context, journalID, articleID uuid.UUID) ([]GalleyResponse, error) {
	if _, err := findArticle(ctx, s.articles, journalID, articleID); err != nil {
		return nil, err
	}
	galleys, err := s.galleys.FindByArticle(ctx, journalID, articleID)
	if err != nil {
		return nil, err
	}
	return ToGalleyResponses(galleys), nil
}

// DownloadURL returns a presigned GET URL for a galley
func (s *GalleyService) DownloadURL(ctx context.Context, journalID, galleyID uuid.UUID) (*GalleyDownloadResponse, error) {
	g, err := s.find(ctx, journalID, galleyID)
	if err != nil {
		return nil, err
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, g.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}
	return &GalleyDownloadResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// Delete removes the galley metadata and its object
func (s *GalleyService) Delete(ctx context.Context, journalID, galleyID uuid.UUID) error {
	g, err := s.find(ctx, journalID, galleyID)
	if err != nil {
		return err
	}
	if err := s.galleys.Delete(ctx, journalID, g.ID); err != nil {
		return err
	}
	if err := s.storage.DeleteObject(ctx, g.StorageKey); err != nil {
		s.logger.Warn("Failed to delete galley object",
			zap.String("galley_id", g.ID.String()),
			zap.String("storage_key", g.StorageKey),
			zap.Error(err))
	}
	return nil
}

// PreviewXML renders an XML galley as HTML
func (s *GalleyService) PreviewXML(ctx context.Context, journalID, galleyID uuid.UUID) (string, error) {
	g, err := s.find(ctx, journalID, galleyID)
	if err != nil {
		return "", err
	}
	if !g.IsXML() {
		return "", shared.NewDomainError("NOT_XML_GALLEY", "Only XML galleys can be previewed")
	}
	body, err := s.storage.Download(ctx, g.StorageKey)
	if err != nil {
		return "", fmt.Errorf("download galley %s: %w", g.ID, err)
	}
	defer body.Close()

	limit := s.config.MaxPreviewSize
	if limit <= 0 {
		limit = submission.MaxGalleySize
	}
	return s.renderer.RenderHTML(io.LimitReader(body, limit))
}

func (s *GalleyService) find(ctx context.Context, journalID, galleyID uuid.UUID) (*submission.Galley, error) {
	g, err := s.galleys.FindByID(ctx, journalID, galleyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrGalleyNotFound
		}
		return nil, err
	}
	return g, nil
}
