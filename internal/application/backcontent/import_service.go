package backcontent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Import sources, used for metrics and logs
const (
	SourceDOI  = "doi"
	SourceURL  = "url"
	SourceJATS = "jats"
)

// ImportService turns external metadata into back content records
type ImportService struct {
	tx             TransactionScope
	resolver       DOIResolver
	scraper        CitationScraper
	jats           JATSParser
	galleys        *GalleyService
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	metrics        Metrics
}

// NewImportService creates a new ImportService
func NewImportService(
	tx TransactionScope,
	resolver DOIResolver,
	scraper CitationScraper,
	jats JATSParser,
	galleys *GalleyService,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		tx:       tx,
		resolver: resolver,
		scraper:  scraper,
		jats:     jats,
		galleys:  galleys,
		logger:   logger,
		metrics:  NoopMetrics{},
	}
}

// SetEventPublisher sets the publisher used after commit
func (s *ImportService) SetEventPublisher(p shared.EventPublisher) {
	s.eventPublisher = p
}

// SetMetrics replaces the metrics sink
func (s *ImportService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// ImportDOI resolves a DOI against the registry and creates an article
func (s *ImportService) ImportDOI(ctx context.Context, journalID uuid.UUID, createdBy *uuid.UUID, raw string) (*ImportResult, error) {
	doi := submission.NormalizeDOI(raw)
	if err := submission.ValidateDOI(doi); err != nil {
		return nil, err
	}
	meta, err := s.resolver.Resolve(ctx, doi)
	if err != nil {
		return nil, s.failed(SourceDOI, err)
	}
	if meta.DOI == "" {
		meta.DOI = doi
	}
	return s.CreateFromMetadata(ctx, journalID, createdBy, meta, SourceDOI)
}

// ImportURL scrapes citation meta tags from a page and creates a remote article
func (s *ImportService) ImportURL(ctx context.Context, journalID uuid.UUID, createdBy *uuid.UUID, rawURL string) (*ImportResult, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, submission.ErrUnsupportedRemoteURL
	}
	meta, err := s.scraper.Scrape(ctx, u.String())
	if err != nil {
		return nil, s.failed(SourceURL, err)
	}
	meta.IsRemote = true
	if meta.RemoteURL == "" {
		meta.RemoteURL = u.String()
	}
	return s.CreateFromMetadata(ctx, journalID, createdBy, meta, SourceURL)
}

// ImportJATS parses a JATS file, creates the article and stores the file as its XML galley
func (s *ImportService) ImportJATS(ctx context.Context, journalID uuid.UUID, createdBy *uuid.UUID, file GalleyFile) (*ImportResult, error) {
	if file.Size > submission.MaxGalleySize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the 100MB limit")
	}
	data, err := io.ReadAll(io.LimitReader(file.Body, submission.MaxGalleySize+1))
	if err != nil {
		return nil, fmt.Errorf("read jats upload: %w", err)
	}
	if int64(len(data)) > submission.MaxGalleySize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the 100MB limit")
	}

	meta, err := s.jats.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, s.failed(SourceJATS, err)
	}
	result, err := s.CreateFromMetadata(ctx, journalID, createdBy, meta, SourceJATS)
	if err != nil {
		return nil, err
	}

	contentType := file.ContentType
	if !submission.GalleyXML.AllowsContentType(contentType) {
		contentType = "application/xml"
	}
	_, err = s.galleys.Upload(ctx, journalID, result.Article.ID, "xml", []GalleyFile{{
		Name:        file.Name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}})
	if err != nil {
		s.logger.Warn("Imported article created without its XML galley",
			zap.String("article_id", result.Article.ID.String()),
			zap.Error(err))
		result.Messages = append(result.Messages, "XML galley could not be stored.")
		return result, nil
	}
	result.Messages = append(result.Messages, "XML galley stored.")
	return result, nil
}

// CreateFromMetadata is the single creation call behind every importer.
// Imported authors become provisional frozen authors because they have no accounts.
func (s *ImportService) CreateFromMetadata(ctx context.Context, journalID uuid.UUID, createdBy *uuid.UUID, meta *submission.ImportedMetadata, source string) (*ImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "import", "create_from_metadata",
		telemetry.SpanAttrJournalID, journalID.String(),
		telemetry.SpanAttrImportSource, source)
	defer span.End()

	normalizeImported(meta)
	messages := make([]string, 0, 2)
	var article *submission.Article

	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		// Bumping the journal counter locks its row, so imports into one
		// journal run the duplicate check one at a time.
		number, err := repos.Journals().NextArticleNumber(ctx, journalID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrJournalNotFound
			}
			return err
		}
		if meta.DOI != "" {
			exists, err := repos.Articles().ExistsByDOI(ctx, journalID, meta.DOI, uuid.Nil)
			if err != nil {
				return err
			}
			if exists {
				return submission.ErrDuplicateDOI
			}
		}
		article = submission.NewArticle(journalID, number)
		if createdBy != nil {
			article.SetCreatedBy(*createdBy)
		}

		if err := article.SaveInfo(s.articleInfo(meta)); err != nil {
			return err
		}
		if err := article.SavePublicationInfo(submission.PublicationInfo{
			DatePublished: meta.DatePublished,
			PageNumbers:   truncate(meta.PageNumbers, 32),
		}); err != nil {
			return err
		}
		if meta.IsRemote {
			article.MarkRemote(meta.RemoteURL)
		}
		if meta.DOI != "" {
			id, err := article.AddIdentifier(submission.IdentifierDOI, meta.DOI)
			if err != nil {
				return err
			}
			messages = append(messages, fmt.Sprintf("Identifier %s created.", id))
		}
		for _, a := range meta.Authors {
			if err := article.AddProvisionalAuthor(submission.AuthorDetails{
				FirstName:   a.Given,
				LastName:    a.Family,
				Email:       a.Email,
				Institution: a.Affiliation,
				ORCID:       a.ORCID,
			}); err != nil {
				return err
			}
		}
		return repos.Articles().Create(ctx, article)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.failed(source, err)
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrArticleID, article.ID.String(),
		telemetry.SpanAttrDOI, meta.DOI)

	messages = append(messages, "Article created.")
	s.logger.Info("Article imported",
		zap.String("source", source),
		zap.String("article_id", article.ID.String()),
		zap.String("journal_id", journalID.String()),
		zap.String("doi", meta.DOI))
	s.metrics.ArticleCreated(source)
	publishEvents(ctx, s.eventPublisher, article)

	return &ImportResult{
		Article:  ToArticleResponse(article, nil),
		Messages: messages,
	}, nil
}

func (s *ImportService) articleInfo(meta *submission.ImportedMetadata) submission.ArticleInfo {
	lang, err := submission.NormalizeLanguage(meta.Language)
	if err != nil {
		s.logger.Debug("Dropping unrecognised imported language", zap.String("language", meta.Language))
		lang = ""
	}
	return submission.ArticleInfo{
		Title:    truncate(meta.Title, 999),
		Subtitle: truncate(meta.Subtitle, 999),
		Abstract: meta.Abstract,
		Language: lang,
		Keywords: meta.Keywords,
	}
}

func (s *ImportService) failed(source string, err error) error {
	code := shared.CodeOf(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	s.metrics.ImportFailed(source, code)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
