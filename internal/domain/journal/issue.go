package journal

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// Issue is a numbered issue of a journal.
// Articles reference it as their primary issue.
type Issue struct {
	shared.JournalAggregateRoot
	Volume        int
	Number        string
	Year          int
	Title         string
	DatePublished *time.Time
}

// NewIssue creates an issue for a journal
func NewIssue(journalID uuid.UUID, volume int, number string, year int) (*Issue, error) {
	if volume < 0 {
		return nil, shared.NewDomainError("INVALID_VOLUME", "Volume cannot be negative")
	}
	number = strings.TrimSpace(number)
	if len(number) > 20 {
		return nil, shared.NewDomainError("INVALID_ISSUE_NUMBER", "Issue number cannot exceed 20 characters")
	}
	if year != 0 && (year < 1600 || year > 9999) {
		return nil, shared.NewDomainError("INVALID_YEAR", "Year is out of range")
	}

	return &Issue{
		JournalAggregateRoot: shared.NewJournalAggregateRoot(journalID),
		Volume:               volume,
		Number:               number,
		Year:                 year,
	}, nil
}

// SetTitle sets the optional issue title
func (i *Issue) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if len(title) > 300 {
		return shared.NewDomainError("INVALID_ISSUE_TITLE", "Issue title cannot exceed 300 characters")
	}
	i.Title = title
	i.Touch()
	return nil
}

// SetDatePublished sets the publication date of the issue
func (i *Issue) SetDatePublished(t *time.Time) {
	i.DatePublished = t
	if t != nil && i.Year == 0 {
		i.Year = t.Year()
	}
	i.Touch()
}

// BelongsTo reports whether the issue is owned by the journal
func (i *Issue) BelongsTo(journalID uuid.UUID) bool {
	return i.JournalID == journalID
}

// DisplayName renders "Vol. 3 No. 2 (2019)"
func (i *Issue) DisplayName() string {
	var b strings.Builder
	if i.Volume > 0 {
		b.WriteString("Vol. ")
		b.WriteString(strconv.Itoa(i.Volume))
	}
	if i.Number != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("No. ")
		b.WriteString(i.Number)
	}
	if i.Year > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("(" + strconv.Itoa(i.Year) + ")")
	}
	if b.Len() == 0 {
		return i.Title
	}
	return b.String()
}
