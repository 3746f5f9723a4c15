package backcontent

import (
	"context"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// WizardAction names the button pressed on the article page
type WizardAction string

const (
	ActionSaveSection1 WizardAction = "save_section_1"
	ActionSaveSection2 WizardAction = "save_section_2"
	ActionSaveSection3 WizardAction = "save_section_3"
	ActionUploadXML    WizardAction = "xml"
	ActionUploadPDF    WizardAction = "pdf"
	ActionUploadOther  WizardAction = "other"
	ActionAddAuthor    WizardAction = "add_author"
	ActionPublish      WizardAction = "publish"
)

// wizardPrecedence decides which action runs when a form carries several buttons
var wizardPrecedence = []WizardAction{
	ActionSaveSection1,
	ActionSaveSection2,
	ActionSaveSection3,
	ActionUploadXML,
	ActionUploadPDF,
	ActionUploadOther,
	ActionAddAuthor,
	ActionPublish,
}

// Next steps reported after a wizard submission
const (
	NextArticle = "article"
	NextIndex   = "index"
)

// ErrUnknownWizardAction is returned when no known button was pressed
var ErrUnknownWizardAction = shared.NewDomainError("UNKNOWN_WIZARD_ACTION", "The form did not name a known action")

// ResolveWizardAction picks the first known button present in the form
func ResolveWizardAction(has func(key string) bool) (WizardAction, error) {
	for _, a := range wizardPrecedence {
		if has(string(a)) {
			return a, nil
		}
	}
	return "", ErrUnknownWizardAction
}

// WizardForm is one submission of the article page
type WizardForm struct {
	Action      WizardAction
	Info        SaveArticleInfoRequest
	MainAuthor  string
	Publication SavePublicationInfoRequest
	Author      AddAuthorRequest
	Files       []GalleyFile
}

// WizardResult tells the caller where to go next
type WizardResult struct {
	Action    WizardAction     `json:"action"`
	Next      string           `json:"next"`
	ArticleID uuid.UUID        `json:"article_id"`
	Messages  []string         `json:"messages"`
	Article   *ArticleResponse `json:"article,omitempty"`
	Galleys   []GalleyResponse `json:"galleys,omitempty"`
}

// WizardService dispatches a wizard submission to the service owning the action
type WizardService struct {
	articles    *ArticleService
	authors     *AuthorService
	galleys     *GalleyService
	publication *PublicationService
}

// NewWizardService creates a new WizardService
func NewWizardService(articles *ArticleService, authors *AuthorService, galleys *GalleyService, publication *PublicationService) *WizardService {
	return &WizardService{
		articles:    articles,
		authors:     authors,
		galleys:     galleys,
		publication: publication,
	}
}

// Submit runs the form's action
func (w *WizardService) Submit(ctx context.Context, journalID, articleID uuid.UUID, form WizardForm) (*WizardResult, error) {
	result := &WizardResult{
		Action:    form.Action,
		Next:      NextArticle,
		ArticleID: articleID,
		Messages:  make([]string, 0, 1),
	}

	switch form.Action {
	case ActionSaveSection1:
		article, err := w.articles.SaveInfo(ctx, journalID, articleID, form.Info)
		if err != nil {
			return nil, err
		}
		result.Article = article

	case ActionSaveSection2:
		if form.MainAuthor == "" {
			return nil, shared.NewDomainError("MAIN_AUTHOR_REQUIRED", "Select a correspondence author")
		}
		accountID, err := uuid.Parse(form.MainAuthor)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ID", "Invalid account ID")
		}
		article, err := w.articles.SetCorrespondenceAuthor(ctx, journalID, articleID, accountID)
		if err != nil {
			return nil, err
		}
		result.Article = article

	case ActionSaveSection3:
		article, err := w.articles.SavePublicationInfo(ctx, journalID, articleID, form.Publication)
		if err != nil {
			return nil, err
		}
		result.Article = article

	case ActionUploadXML, ActionUploadPDF, ActionUploadOther:
		galleys, err := w.galleys.Upload(ctx, journalID, articleID, string(form.Action), form.Files)
		if err != nil {
			return nil, err
		}
		result.Galleys = galleys

	case ActionAddAuthor:
		added, err := w.authors.AddAuthor(ctx, journalID, articleID, form.Author)
		if err != nil {
			return nil, err
		}
		result.Article = &added.Article
		result.Messages = append(result.Messages, added.Message)

	case ActionPublish:
		published, err := w.publication.Publish(ctx, journalID, articleID)
		if err != nil {
			return nil, err
		}
		result.Article = &published.Article
		result.Messages = append(result.Messages, published.Messages...)
		result.Next = NextIndex

	default:
		return nil, ErrUnknownWizardAction
	}

	return result, nil
}
