package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/scholarly/backcontent/internal/application/backcontent"
	"github.com/scholarly/backcontent/internal/domain/shared"
)

// multipartMemory is kept in memory per upload; larger parts spill to disk
const multipartMemory = 32 << 20

var errInvalidDate = shared.NewDomainError("INVALID_DATES", "Dates must be YYYY-MM-DD")

// formValues parses urlencoded and multipart bodies alike
func formValues(c *gin.Context) (url.Values, map[string][]*multipart.FileHeader, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			return nil, nil, err
		}
		return c.Request.MultipartForm.Value, c.Request.MultipartForm.File, nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, nil, err
	}
	return c.Request.PostForm, nil, nil
}

// openFiles opens uploaded parts. The returned func closes them.
func openFiles(headers []*multipart.FileHeader) ([]backcontent.GalleyFile, func(), error) {
	files := make([]backcontent.GalleyFile, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range closers {
			_ = f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		closers = append(closers, f)
		files = append(files, backcontent.GalleyFile{
			Name:        fh.Filename,
			ContentType: partContentType(fh),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return files, closeAll, nil
}

// partContentType strips parameters; a missing type is sniffed from the file
func partContentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		if f, err := fh.Open(); err == nil {
			buf := make([]byte, 512)
			n, _ := f.Read(buf)
			_ = f.Close()
			ct = http.DetectContentType(buf[:n])
		}
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(strings.ToLower(ct))
}

// wizardForm turns a submitted article page into a WizardForm for its action
func wizardForm(values url.Values) (backcontent.WizardForm, error) {
	action, err := backcontent.ResolveWizardAction(func(key string) bool {
		_, ok := values[key]
		return ok
	})
	if err != nil {
		return backcontent.WizardForm{}, err
	}
	form := backcontent.WizardForm{Action: action}

	switch action {
	case backcontent.ActionSaveSection1:
		form.Info = backcontent.SaveArticleInfoRequest{
			Title:    strings.TrimSpace(values.Get("title")),
			Subtitle: values.Get("subtitle"),
			Abstract: values.Get("abstract"),
			Language: values.Get("language"),
			Keywords: keywords(values["keywords"]),
			Section:  values.Get("section"),
			License:  values.Get("license"),
		}
		if err := binding.Validator.ValidateStruct(&form.Info); err != nil {
			return form, err
		}
	case backcontent.ActionSaveSection2:
		form.MainAuthor = firstValue(values, "main-author", "main_author")
	case backcontent.ActionSaveSection3:
		pub, err := publicationInfo(values)
		if err != nil {
			return form, err
		}
		form.Publication = pub
	case backcontent.ActionAddAuthor:
		form.Author = backcontent.AddAuthorRequest{
			Email:       values.Get("email"),
			FirstName:   values.Get("first_name"),
			MiddleName:  values.Get("middle_name"),
			LastName:    values.Get("last_name"),
			Institution: values.Get("institution"),
			Department:  values.Get("department"),
			Country:     values.Get("country"),
			ORCID:       values.Get("orcid"),
		}
		if err := binding.Validator.ValidateStruct(&form.Author); err != nil {
			return form, err
		}
	}
	return form, nil
}

// uploads picks the parts posted for one galley kind: "<kind>-file" as the
// article page names them, then the generic "file" and "files" fields.
// Parts posted under another kind's field are left alone.
func uploads(files map[string][]*multipart.FileHeader, kind string) []*multipart.FileHeader {
	fields := []string{"file", "files"}
	if kind != "" {
		fields = append([]string{kind + "-file"}, fields...)
	}
	for _, field := range fields {
		if fhs := files[field]; len(fhs) > 0 {
			return fhs
		}
	}
	return nil
}

func firstValue(values url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(values.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

// keywords accepts repeated fields or one comma separated field
func keywords(raw []string) []string {
	if len(raw) == 1 {
		raw = strings.Split(raw[0], ",")
	}
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func publicationInfo(values url.Values) (backcontent.SavePublicationInfoRequest, error) {
	var req backcontent.SavePublicationInfoRequest
	var err error
	if req.DateAccepted, err = parseDate(values.Get("date_accepted")); err != nil {
		return req, err
	}
	if req.DatePublished, err = parseDate(values.Get("date_published")); err != nil {
		return req, err
	}
	req.PageNumbers = strings.TrimSpace(values.Get("page_numbers"))
	if raw := values.Get("primary_issue"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return req, shared.NewDomainError("INVALID_ID", "Invalid primary issue")
		}
		req.PrimaryIssueID = &id
	}
	switch strings.ToLower(values.Get("peer_reviewed")) {
	case "on", "true", "1", "yes":
		req.PeerReviewed = true
	}
	return req, nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, errInvalidDate
}
