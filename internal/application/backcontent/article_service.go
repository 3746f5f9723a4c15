package backcontent

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"go.uber.org/zap"
)

// Application errors shared by the back content services
var (
	ErrArticleNotFound = shared.NewDomainError("ARTICLE_NOT_FOUND", "Article not found")
	ErrIssueNotFound   = shared.NewDomainError("ISSUE_NOT_FOUND", "Issue not found in this journal")
	ErrJournalNotFound = shared.NewDomainError("JOURNAL_NOT_FOUND", "Journal not found")
	ErrGalleyNotFound  = shared.NewDomainError("GALLEY_NOT_FOUND", "Galley not found")
	ErrAccountNotFound = shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
)

// ArticleService implements the record editor operations
type ArticleService struct {
	tx             TransactionScope
	articles       submission.ArticleRepository
	galleys        submission.GalleyRepository
	issues         journal.IssueRepository
	accounts       identity.AccountRepository
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	metrics        Metrics
}

// NewArticleService creates a new ArticleService
func NewArticleService(
	tx TransactionScope,
	articles submission.ArticleRepository,
	galleys submission.GalleyRepository,
	issues journal.IssueRepository,
	accounts identity.AccountRepository,
	logger *zap.Logger,
) *ArticleService {
	return &ArticleService{
		tx:       tx,
		articles: articles,
		galleys:  galleys,
		issues:   issues,
		accounts: accounts,
		logger:   logger,
		metrics:  NoopMetrics{},
	}
}

// SetEventPublisher sets the publisher used after commit
func (s *ArticleService) SetEventPublisher(p shared.EventPublisher) {
	s.eventPublisher = p
}

// SetMetrics replaces the metrics sink
func (s *ArticleService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// CreateBlank creates an empty record in stage back_content
func (s *ArticleService) CreateBlank(ctx context.Context, journalID uuid.UUID, createdBy *uuid.UUID) (*ArticleResponse, error) {
	var article *submission.Article
	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.Journals().NextArticleNumber(ctx, journalID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrJournalNotFound
			}
			return err
		}
		article = submission.NewArticle(journalID, number)
		if createdBy != nil {
			article.SetCreatedBy(*createdBy)
		}
		return repos.Articles().Create(ctx, article)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Back content article created",
		zap.String("article_id", article.ID.String()),
		zap.String("journal_id", journalID.String()),
		zap.Int("number", article.Number))
	s.metrics.ArticleCreated("blank")
	publishEvents(ctx, s.eventPublisher, article)

	resp := ToArticleResponse(article, nil)
	return &resp, nil
}

// Get returns the wizard view of an article
func (s *ArticleService) Get(ctx context.Context, journalID, articleID uuid.UUID) (*WizardView, error) {
	article, err := findArticle(ctx, s.articles, journalID, articleID)
	if err != nil {
		return nil, err
	}
	accounts, err := loadAccounts(ctx, s.accounts, article.AuthorIDs())
	if err != nil {
		return nil, err
	}
	galleys, err := s.galleys.FindByArticle(ctx, journalID, articleID)
	if err != nil {
		return nil, err
	}
	issues, err := s.issues.FindAllForJournal(ctx, journalID)
	if err != nil {
		return nil, err
	}

	return &WizardView{
		Article: ToArticleResponse(article, accounts),
		Galleys: ToGalleyResponses(galleys),
		Issues:  ToIssueOptions(issues),
	}, nil
}

// GetArticle returns the article record alone
func (s *ArticleService) GetArticle(ctx context.Context, journalID, articleID uuid.UUID) (*ArticleResponse, error) {
	article, err := findArticle(ctx, s.articles, journalID, articleID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, article)
}

// List returns the article index
func (s *ArticleService) List(ctx context.Context, journalID uuid.UUID, filter ArticleListFilter) ([]ArticleListItem, int64, error) {
	f := submission.ArticleFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	if filter.Stage != "" {
		stage := submission.Stage(filter.Stage)
		if !stage.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STAGE", "Unknown stage: "+filter.Stage)
		}
		f.Stage = &stage
	}

	articles, total, err := s.articles.FindAllForJournal(ctx, journalID, f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ArticleListItem, len(articles))
	for i, a := range articles {
		items[i] = ToArticleListItem(a)
	}
	return items, total, nil
}

// SaveInfo applies wizard section 1
func (s *ArticleService) SaveInfo(ctx context.Context, journalID, articleID uuid.UUID, req SaveArticleInfoRequest) (*ArticleResponse, error) {
	article, err := findArticle(ctx, s.articles, journalID, articleID)
	if err != nil {
		return nil, err
	}
	if err := article.SaveInfo(submission.ArticleInfo{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Abstract: req.Abstract,
		Language: req.Language,
		Keywords: req.Keywords,
		Section:  req.Section,
		License:  req.License,
	}); err != nil {
		return nil, err
	}
	if err := s.articles.Save(ctx, article); err != nil {
		return nil, err
	}
	return s.respond(ctx, article)
}

// SetCorrespondenceAuthor applies wizard section 2
func (s *ArticleService) SetCorrespondenceAuthor(ctx context.Context, journalID, articleID, accountID uuid.UUID) (*ArticleResponse, error) {
	article, err := findArticle(ctx, s.articles, journalID, articleID)
	if err != nil {
		return nil, err
	}
	if err := article.SetCorrespondenceAuthor(accountID); err != nil {
		return nil, err
	}
	if err := s.articles.Save(ctx, article); err != nil {
		return nil, err
	}
	return s.respond(ctx, article)
}

// SavePublicationInfo applies wizard section 3.
// A primary issue must belong to the journal and the article joins that issue.
func (s *ArticleService) SavePublicationInfo(ctx context.Context, journalID, articleID uuid.UUID, req SavePublicationInfoRequest) (*ArticleResponse, error) {
	var article *submission.Article
	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		article, err = findArticle(ctx, repos.Articles(), journalID, articleID)
		if err != nil {
			return err
		}
		if req.PrimaryIssueID != nil {
			if _, err := findIssue(ctx, repos.Issues(), journalID, *req.PrimaryIssueID); err != nil {
				return err
			}
		}
		if err := article.SavePublicationInfo(submission.PublicationInfo{
			DateAccepted:   req.DateAccepted,
			DatePublished:  req.DatePublished,
			PageNumbers:    req.PageNumbers,
			PrimaryIssueID: req.PrimaryIssueID,
			PeerReviewed:   req.PeerReviewed,
		}); err != nil {
			return err
		}
		if err := repos.Articles().Save(ctx, article); err != nil {
			return err
		}
		if req.PrimaryIssueID != nil {
			return repos.Issues().AddArticle(ctx, *req.PrimaryIssueID, article.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, article)
}

func (s *ArticleService) respond(ctx context.Context, article *submission.Article) (*ArticleResponse, error) {
	accounts, err := loadAccounts(ctx, s.accounts, article.AuthorIDs())
	if err != nil {
		return nil, err
	}
	resp := ToArticleResponse(article, accounts)
	return &resp, nil
}

func findArticle(ctx context.Context, repo submission.ArticleReader, journalID, articleID uuid.UUID) (*submission.Article, error) {
	article, err := repo.FindByIDForJournal(ctx, journalID, articleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return article, nil
}

func findIssue(ctx context.Context, repo journal.IssueRepository, journalID, issueID uuid.UUID) (*journal.Issue, error) {
	issue, err := repo.FindByIDForJournal(ctx, journalID, issueID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}
	return issue, nil
}

func loadAccounts(ctx context.Context, repo identity.AccountRepository, ids []uuid.UUID) (map[uuid.UUID]*identity.Account, error) {
	out := make(map[uuid.UUID]*identity.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	accounts, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		out[a.ID] = a
	}
	return out, nil
}

// publishEvents publishes and clears pending events. Publisher errors are logged by the bus.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	if publisher == nil || len(events) == 0 {
		agg.ClearDomainEvents()
		return
	}
	_ = publisher.Publish(ctx, events...)
	agg.ClearDomainEvents()
}

func timeOrNow(t *time.Time, now time.Time) time.Time {
	if t != nil {
		return *t
	}
	return now
}
