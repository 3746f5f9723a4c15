package submission

import (
	"time"

	"github.com/google/uuid"
)

// AccountSnapshot pairs an attached account with the details to freeze
type AccountSnapshot struct {
	AccountID uuid.UUID
	Details   AuthorDetails
}

// SnapshotAuthors builds frozen authors in author order from live account data.
// Accounts missing from details are skipped.
func (a *Article) SnapshotAuthors(details map[uuid.UUID]AuthorDetails) []FrozenAuthor {
	frozen := make([]FrozenAuthor, 0, len(a.Authors))
	for _, au := range a.SortedAuthors() {
		d, ok := details[au.AccountID]
		if !ok {
			continue
		}
		accountID := au.AccountID
		frozen = append(frozen, FrozenAuthor{
			ID:            uuid.New(),
			AccountID:     &accountID,
			AuthorDetails: d,
			Order:         len(frozen),
		})
	}
	return frozen
}

// Publish moves the article to the published stage.
// A non-empty frozen list replaces the provisional authors. An empty one keeps them.
func (a *Article) Publish(frozen []FrozenAuthor, now time.Time) error {
	if a.IsPublished() {
		return ErrArticleAlreadyPublished
	}
	if len(frozen) > 0 {
		a.FrozenAuthors = frozen
	}
	a.Stage = StagePublished
	if a.DatePublished == nil {
		t := now
		a.DatePublished = &t
	}
	a.Touch()
	a.IncrementVersion()
	a.AddDomainEvent(NewArticlePublishedEvent(a))
	return nil
}
