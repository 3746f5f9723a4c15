package backcontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/identity"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"go.uber.org/zap"
)

// generatedPasswordLength is the length of passwords set on accounts created for authors
const generatedPasswordLength = 32

// AddAuthorResult reports what AddAuthor did
type AddAuthorResult struct {
	Article        ArticleResponse `json:"article"`
	Author         DirectoryEntry  `json:"author"`
	AccountCreated bool            `json:"account_created"`
	Attached       bool            `json:"attached"`
	Message        string          `json:"message"`
}

// AuthorService attaches directory accounts to articles
type AuthorService struct {
	tx       TransactionScope
	articles submission.ArticleRepository
	accounts identity.AccountRepository
	logger   *zap.Logger
}

// NewAuthorService creates a new AuthorService
func NewAuthorService(
	tx TransactionScope,
	articles submission.ArticleRepository,
	accounts identity.AccountRepository,
	logger *zap.Logger,
) *AuthorService {
	return &AuthorService{
		tx:       tx,
		articles: articles,
		accounts: accounts,
		logger:   logger,
	}
}

// AddAuthor attaches the account with the given email, creating it when missing.
// New accounts get a random password and the author role on the journal.
func (s *AuthorService) AddAuthor(ctx context.Context, journalID, articleID uuid.UUID, req AddAuthorRequest) (*AddAuthorResult, error) {
	email := identity.NormalizeEmail(req.Email)
	result := &AddAuthorResult{}
	var article *submission.Article
	var account *identity.Account

	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		article, err = findArticle(ctx, repos.Articles(), journalID, articleID)
		if err != nil {
			return err
		}

		account, err = repos.Accounts().FindByEmail(ctx, email)
		switch {
		case err == nil:
		case errors.Is(err, shared.ErrNotFound):
			account, err = s.createAuthorAccount(ctx, repos.Accounts(), journalID, email, req)
			if err != nil {
				return err
			}
			result.AccountCreated = true
		default:
			return err
		}

		result.Attached = article.AddAuthor(account.ID)
		if !result.Attached {
			return nil
		}
		return repos.Articles().Save(ctx, article)
	})
	if err != nil {
		return nil, err
	}

	if result.AccountCreated {
		s.logger.Info("Author account created",
			zap.String("account_id", account.ID.String()),
			zap.String("journal_id", journalID.String()))
	}

	accounts, err := loadAccounts(ctx, s.accounts, article.AuthorIDs())
	if err != nil {
		return nil, err
	}
	accounts[account.ID] = account
	result.Article = ToArticleResponse(article, accounts)
	result.Author = ToDirectoryEntry(account)
	if result.Attached {
		result.Message = fmt.Sprintf("%s added to the article", account.FullName())
	} else {
		result.Message = fmt.Sprintf("%s is already an author of the article", account.FullName())
	}
	return result, nil
}

func (s *AuthorService) createAuthorAccount(ctx context.Context, repo identity.AccountRepository, journalID uuid.UUID, email string, req AddAuthorRequest) (*identity.Account, error) {
	if strings.TrimSpace(req.FirstName) == "" && strings.TrimSpace(req.LastName) == "" {
		return nil, shared.NewDomainError("AUTHOR_NAME_REQUIRED", "A first or last name is required to create a new author")
	}
	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	account, err := identity.NewAccount(email, password, identity.Profile{
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Institution: req.Institution,
		Department:  req.Department,
		Country:     req.Country,
		ORCID:       req.ORCID,
	})
	if err != nil {
		return nil, err
	}
	if _, err := account.AddRole(journalID, identity.RoleAuthor); err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, account); err != nil {
		return nil, err
	}
	if err := repo.SaveRoles(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// RemoveAuthor detaches an account and renumbers the remaining authors
func (s *AuthorService) RemoveAuthor(ctx context.Context, journalID, articleID, accountID uuid.UUID) (*ArticleResponse, error) {
	article, err := findArticle(ctx, s.articles, journalID, articleID)
	if err != nil {
		return nil, err
	}
	if err := article.RemoveAuthor(accountID); err != nil {
		return nil, err
	}
	if err := s.articles.Save(ctx, article); err != nil {
		return nil, err
	}
	accounts, err := loadAccounts(ctx, s.accounts, article.AuthorIDs())
	if err != nil {
		return nil, err
	}
	resp := ToArticleResponse(article, accounts)
	return &resp, nil
}

// ReorderAuthors sets the author order
func (s *AuthorService) ReorderAuthors(ctx context.Context, journalID, articleID uuid.UUID, req ReorderAuthorsRequest) (*ArticleResponse, error) {
	article, err := findArticle(ctx, s.articles, journalID, articleID)
	if err != nil {
		return nil, err
	}
	if err := article.ReorderAuthors(req.AccountIDs); err != nil {
		return nil, err
	}
	if err := s.articles.Save(ctx, article); err != nil {
		return nil, err
	}
	accounts, err := loadAccounts(ctx, s.accounts, article.AuthorIDs())
	if err != nil {
		return nil, err
	}
	resp := ToArticleResponse(article, accounts)
	return &resp, nil
}

// SearchDirectory searches the global account directory
func (s *AuthorService) SearchDirectory(ctx context.Context, filter DirectorySearchFilter) ([]DirectoryEntry, int64, error) {
	f := shared.DefaultFilter()
	f.OrderBy = "last_name"
	f.OrderDir = "asc"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	accounts, total, err := s.accounts.Search(ctx, strings.TrimSpace(filter.Query), f)
	if err != nil {
		return nil, 0, err
	}
	entries := make([]DirectoryEntry, len(accounts))
	for i, a := range accounts {
		entries[i] = ToDirectoryEntry(a)
	}
	return entries, total, nil
}
