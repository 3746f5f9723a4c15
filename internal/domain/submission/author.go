package submission

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// ArticleAuthor links an account to an article with its display order
type ArticleAuthor struct {
	AccountID uuid.UUID
	Order     int
}

// AuthorDetails is the identity copied into a frozen author
type AuthorDetails struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Email       string
	Institution string
	Department  string
	Country     string
	ORCID       string
}

// FrozenAuthor is a snapshot of an author detached from the live account.
// AccountID is nil for provisional authors created by an importer.
type FrozenAuthor struct {
	ID        uuid.UUID
	AccountID *uuid.UUID
	AuthorDetails
	Order int
}

// FullName joins the name parts that are set
func (f FrozenAuthor) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{f.FirstName, f.MiddleName, f.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IsProvisional reports whether the frozen author has no backing account
func (f FrozenAuthor) IsProvisional() bool {
	return f.AccountID == nil
}

// HasAuthor reports whether the account is attached
func (a *Article) HasAuthor(accountID uuid.UUID) bool {
	for _, au := range a.Authors {
		if au.AccountID == accountID {
			return true
		}
	}
	return false
}

// AddAuthor attaches an account at order max+1.
// It returns false without error when the account is already attached.
func (a *Article) AddAuthor(accountID uuid.UUID) bool {
	if a.HasAuthor(accountID) {
		return false
	}
	next := 0
	for _, au := range a.Authors {
		if au.Order+1 > next {
			next = au.Order + 1
		}
	}
	a.Authors = append(a.Authors, ArticleAuthor{AccountID: accountID, Order: next})
	a.Touch()
	a.IncrementVersion()
	return true
}

// RemoveAuthor detaches an account and renumbers the rest from 0.
// Removing the correspondence author clears that field.
func (a *Article) RemoveAuthor(accountID uuid.UUID) error {
	if !a.HasAuthor(accountID) {
		return ErrAuthorNotAttached
	}
	kept := make([]ArticleAuthor, 0, len(a.Authors)-1)
	for _, au := range a.SortedAuthors() {
		if au.AccountID != accountID {
			kept = append(kept, au)
		}
	}
	for i := range kept {
		kept[i].Order = i
	}
	a.Authors = kept
	if a.CorrespondenceAuthorID != nil && *a.CorrespondenceAuthorID == accountID {
		a.CorrespondenceAuthorID = nil
	}
	a.Touch()
	a.IncrementVersion()
	return nil
}

// ReorderAuthors sets the order to the position of each id in ids.
// ids must contain exactly the attached accounts.
func (a *Article) ReorderAuthors(ids []uuid.UUID) error {
	if len(ids) != len(a.Authors) {
		return shared.NewDomainError("INVALID_AUTHOR_ORDER", "Author order must list every attached author exactly once")
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] || !a.HasAuthor(id) {
			return shared.NewDomainError("INVALID_AUTHOR_ORDER", "Author order must list every attached author exactly once")
		}
		seen[id] = true
	}

	reordered := make([]ArticleAuthor, len(ids))
	for i, id := range ids {
		reordered[i] = ArticleAuthor{AccountID: id, Order: i}
	}
	a.Authors = reordered
	a.Touch()
	a.IncrementVersion()
	return nil
}

// SortedAuthors returns a copy of the authors in display order
func (a *Article) SortedAuthors() []ArticleAuthor {
	out := make([]ArticleAuthor, len(a.Authors))
	copy(out, a.Authors)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// AuthorIDs lists attached account ids in display order
func (a *Article) AuthorIDs() []uuid.UUID {
	sorted := a.SortedAuthors()
	ids := make([]uuid.UUID, len(sorted))
	for i, au := range sorted {
		ids[i] = au.AccountID
	}
	return ids
}

// AddProvisionalAuthor appends an imported author that has no account yet
func (a *Article) AddProvisionalAuthor(d AuthorDetails) error {
	d.LastName = strings.TrimSpace(d.LastName)
	d.FirstName = strings.TrimSpace(d.FirstName)
	if d.LastName == "" && d.FirstName == "" {
		return shared.NewDomainError("INVALID_AUTHOR", "Imported author has no name")
	}
	a.FrozenAuthors = append(a.FrozenAuthors, FrozenAuthor{
		ID:            uuid.New(),
		AuthorDetails: d,
		Order:         len(a.FrozenAuthors),
	})
	a.Touch()
	return nil
}
