package backcontent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PublicationService is the publication gate
type PublicationService struct {
	tx             TransactionScope
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	metrics        Metrics
	now            func() time.Time
}

// NewPublicationService creates a new PublicationService
func NewPublicationService(tx TransactionScope, logger *zap.Logger) *PublicationService {
	return &PublicationService{
		tx:      tx,
		logger:  logger,
		metrics: NoopMetrics{},
		now:     time.Now,
	}
}

// SetEventPublisher sets the publisher used after commit
func (s *PublicationService) SetEventPublisher(p shared.EventPublisher) {
	s.eventPublisher = p
}

// SetMetrics replaces the metrics sink
func (s *PublicationService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// Publish assigns a DOI, freezes authors and moves the article to published.
// Everything is written in one transaction and article.published is emitted after commit.
func (s *PublicationService) Publish(ctx context.Context, journalID, articleID uuid.UUID) (*PublishResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "publication", "publish",
		telemetry.SpanAttrArticleID, articleID.String(),
		telemetry.SpanAttrJournalID, journalID.String())
	defer span.End()

	result := &PublishResult{Messages: make([]string, 0, 2)}
	var article *submission.Article

	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		article, err = findArticle(ctx, repos.Articles(), journalID, articleID)
		if err != nil {
			return err
		}
		if article.IsPublished() {
			return submission.ErrArticleAlreadyPublished
		}

		j, err := repos.Journals().FindByID(ctx, journalID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrJournalNotFound
			}
			return err
		}

		now := s.now()
		if article.DOI() == "" {
			doi, err := s.mintDOI(ctx, repos, j, article, now)
			if err != nil {
				return err
			}
			if doi != "" {
				if _, err := article.AddIdentifier(submission.IdentifierDOI, doi); err != nil {
					return err
				}
				result.DOIAssigned = true
				result.Messages = append(result.Messages, fmt.Sprintf("Identifier %s created.", doi))
			}
		}

		accounts, err := loadAccounts(ctx, repos.Accounts(), article.AuthorIDs())
		if err != nil {
			return err
		}
		details := make(map[uuid.UUID]submission.AuthorDetails, len(accounts))
		for id, acc := range accounts {
			details[id] = toAuthorDetails(acc)
		}

		if err := article.Publish(article.SnapshotAuthors(details), now); err != nil {
			return err
		}
		return repos.Articles().Save(ctx, article)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrDOI, article.DOI())

	s.logger.Info("Article published",
		zap.String("article_id", article.ID.String()),
		zap.String("journal_id", journalID.String()),
		zap.String("doi", article.DOI()))
	s.metrics.ArticlePublished()
	publishEvents(ctx, s.eventPublisher, article)

	result.Messages = append(result.Messages, "Article published.")
	result.DOI = article.DOI()
	result.Article = ToArticleResponse(article, nil)
	return result, nil
}

// mintDOI renders the journal's pattern. It returns "" when the journal has no prefix.
func (s *PublicationService) mintDOI(ctx context.Context, repos TransactionalRepositories, j *journal.Journal, article *submission.Article, now time.Time) (string, error) {
	if !j.HasDOIPrefix() {
		s.logger.Warn("Journal has no DOI prefix, publishing without DOI",
			zap.String("journal_id", j.ID.String()),
			zap.String("article_id", article.ID.String()))
		return "", nil
	}

	dc := journal.DOIContext{
		ArticleNumber: article.Number,
		ArticleID:     article.ID,
		Year:          timeOrNow(article.DatePublished, now).Year(),
	}
	if article.PrimaryIssueID != nil {
		issue, err := findIssue(ctx, repos.Issues(), j.ID, *article.PrimaryIssueID)
		if err != nil {
			return "", err
		}
		dc.Volume = issue.Volume
		dc.Issue = issue.Number
	}

	doi, err := j.RenderDOI(dc)
	if err != nil {
		return "", err
	}
	exists, err := repos.Articles().ExistsByDOI(ctx, j.ID, doi, article.ID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", submission.ErrDuplicateDOI
	}
	return doi, nil
}
