package handler

import (
	"mime/multipart"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, keywords([]string{" a, ,b "}))
	assert.Equal(t, []string{"a, b", "c"}, keywords([]string{"a, b", " c", ""}))
	assert.Empty(t, keywords(nil))
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2019-07-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC), *d)

	d, err = parseDate("2019-07-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	d, err = parseDate("  ")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = parseDate("01/07/2019")
	assert.ErrorIs(t, err, errInvalidDate)
}

func TestWizardForm(t *testing.T) {
	t.Run("first known button wins", func(t *testing.T) {
		form, err := wizardForm(url.Values{"publish": {""}, "pdf": {""}})
		require.NoError(t, err)
		assert.Equal(t, backcontent.ActionUploadPDF, form.Action)
	})

	t.Run("section 2 reads the main author", func(t *testing.T) {
		id := uuid.NewString()
		for _, field := range []string{"main-author", "main_author"} {
			form, err := wizardForm(url.Values{"save_section_2": {""}, field: {id}})
			require.NoError(t, err)
			assert.Equal(t, backcontent.ActionSaveSection2, form.Action)
			assert.Equal(t, id, form.MainAuthor, field)
		}
	})

	t.Run("section 3", func(t *testing.T) {
		issue := uuid.New()
		form, err := wizardForm(url.Values{
			"save_section_3": {""},
			"date_accepted":  {"2019-05-02"},
			"page_numbers":   {" 1-9 "},
			"primary_issue":  {issue.String()},
			"peer_reviewed":  {"on"},
		})
		require.NoError(t, err)
		pub := form.Publication
		require.NotNil(t, pub.DateAccepted)
		assert.Nil(t, pub.DatePublished)
		assert.Equal(t, "1-9", pub.PageNumbers)
		require.NotNil(t, pub.PrimaryIssueID)
		assert.Equal(t, issue, *pub.PrimaryIssueID)
		assert.True(t, pub.PeerReviewed)
	})

	t.Run("section 3 with a bad issue", func(t *testing.T) {
		_, err := wizardForm(url.Values{"save_section_3": {""}, "primary_issue": {"seven"}})
		assert.Error(t, err)
	})

	t.Run("add author validates the email", func(t *testing.T) {
		_, err := wizardForm(url.Values{"add_author": {""}, "email": {"nope"}})
		assert.Error(t, err)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := wizardForm(url.Values{"title": {"x"}})
		assert.ErrorIs(t, err, backcontent.ErrUnknownWizardAction)
	})
}

func TestUploads(t *testing.T) {
	part := func(name string) *multipart.FileHeader { return &multipart.FileHeader{Filename: name} }
	names := func(fhs []*multipart.FileHeader) []string {
		out := make([]string, 0, len(fhs))
		for _, fh := range fhs {
			out = append(out, fh.Filename)
		}
		return out
	}
	files := map[string][]*multipart.FileHeader{
		"pdf-file": {part("a.pdf")},
		"xml-file": {part("b.xml")},
	}

	assert.Equal(t, []string{"a.pdf"}, names(uploads(files, "pdf")))
	assert.Equal(t, []string{"b.xml"}, names(uploads(files, "xml")))
	assert.Empty(t, uploads(files, "other"))

	files["file"] = []*multipart.FileHeader{part("c.doc")}
	assert.Equal(t, []string{"c.doc"}, names(uploads(files, "other")))
	assert.Equal(t, []string{"a.pdf"}, names(uploads(files, "pdf")))
	assert.Equal(t, []string{"c.doc"}, names(uploads(files, "")))
}
