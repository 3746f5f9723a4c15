package journal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	ErrJournalNotFound   = shared.NewDomainError("JOURNAL_NOT_FOUND", "Journal not found")
	ErrJournalCodeExists = shared.NewDomainError("JOURNAL_CODE_EXISTS", "A journal with this code already exists")
	ErrIssueExists       = shared.NewDomainError("ISSUE_EXISTS", "An issue with this volume and number already exists")
)

// JournalService manages journals and their issues
type JournalService struct {
	journals journal.JournalRepository
	issues   journal.IssueRepository
	logger   *zap.Logger
}

// NewJournalService creates a new JournalService
func NewJournalService(journals journal.JournalRepository, issues journal.IssueRepository, logger *zap.Logger) *JournalService {
	return &JournalService{journals: journals, issues: issues, logger: logger}
}

// CreateJournal creates a journal with a unique code
func (s *JournalService) CreateJournal(ctx context.Context, req CreateJournalRequest) (*JournalResponse, error) {
	j, err := journal.NewJournal(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := j.SetISSN(req.ISSN); err != nil {
		return nil, err
	}
	if req.DOIPrefix != "" || req.DOIPattern != "" {
		if err := j.UpdateIdentifierSettings(req.DOIPrefix, req.DOIPattern); err != nil {
			return nil, err
		}
	}

	exists, err := s.journals.ExistsByCode(ctx, j.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrJournalCodeExists
	}
	if err := s.journals.Create(ctx, j); err != nil {
		return nil, err
	}

	s.logger.Info("Journal created", zap.String("journal_id", j.ID.String()), zap.String("code", j.Code))
	resp := ToJournalResponse(j)
	return &resp, nil
}

// GetJournal returns a journal by ID
func (s *JournalService) GetJournal(ctx context.Context, id uuid.UUID) (*JournalResponse, error) {
	j, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToJournalResponse(j)
	return &resp, nil
}

// GetJournalByCode returns a journal by its code
func (s *JournalService) GetJournalByCode(ctx context.Context, code string) (*JournalResponse, error) {
	j, err := s.journals.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrJournalNotFound
		}
		return nil, err
	}
	resp := ToJournalResponse(j)
	return &resp, nil
}

// ListJournals returns every journal ordered by code
func (s *JournalService) ListJournals(ctx context.Context) ([]JournalResponse, error) {
	journals, err := s.journals.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]JournalResponse, len(journals))
	for i, j := range journals {
		out[i] = ToJournalResponse(j)
	}
	return out, nil
}

// UpdateIdentifierSettings sets the DOI prefix and pattern used at publication
func (s *JournalService) UpdateIdentifierSettings(ctx context.Context, id uuid.UUID, req UpdateIdentifierSettingsRequest) (*JournalResponse, error) {
	j, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := j.UpdateIdentifierSettings(req.DOIPrefix, req.DOIPattern); err != nil {
		return nil, err
	}
	if err := s.journals.Update(ctx, j); err != nil {
		return nil, err
	}

	s.logger.Info("DOI settings updated",
		zap.String("journal_id", id.String()),
		zap.String("prefix", j.DOIPrefix),
		zap.String("pattern", j.DOIPattern))
	resp := ToJournalResponse(j)
	return &resp, nil
}

// CreateIssue creates an issue. Volume and number are unique per journal.
func (s *JournalService) CreateIssue(ctx context.Context, journalID uuid.UUID, req CreateIssueRequest) (*IssueResponse, error) {
	if _, err := s.find(ctx, journalID); err != nil {
		return nil, err
	}
	issue, err := journal.NewIssue(journalID, req.Volume, req.Number, req.Year)
	if err != nil {
		return nil, err
	}
	if err := issue.SetTitle(req.Title); err != nil {
		return nil, err
	}
	issue.SetDatePublished(req.DatePublished)

	exists, err := s.issues.ExistsByVolumeNumber(ctx, journalID, issue.Volume, issue.Number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrIssueExists
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	resp := ToIssueResponse(issue)
	return &resp, nil
}

// ListIssues returns the issues of a journal
func (s *JournalService) ListIssues(ctx context.Context, journalID uuid.UUID) ([]IssueResponse, error) {
	issues, err := s.issues.FindAllForJournal(ctx, journalID)
	if err != nil {
		return nil, err
	}
	out := make([]IssueResponse, len(issues))
	for i, issue := range issues {
		out[i] = ToIssueResponse(issue)
	}
	return out, nil
}

func (s *JournalService) find(ctx context.Context, id uuid.UUID) (*journal.Journal, error) {
	j, err := s.journals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrJournalNotFound
		}
		return nil, err
	}
	return j, nil
}
