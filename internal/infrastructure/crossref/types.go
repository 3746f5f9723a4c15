package crossref

// worksResponse is the envelope of GET /works/{doi}
type worksResponse struct {
	Status      string `json:"status"`
	MessageType string `json:"message-type"`
	Message     work   `json:"message"`
}

type work struct {
	DOI             string       `json:"DOI"`
	URL             string       `json:"URL"`
	Title           []string     `json:"title"`
	Subtitle        []string     `json:"subtitle"`
	Abstract        string       `json:"abstract"`
	Author          []workAuthor `json:"author"`
	ContainerTitle  []string     `json:"container-title"`
	Volume          string       `json:"volume"`
	Issue           string       `json:"issue"`
	Page            string       `json:"page"`
	Language        string       `json:"language"`
	Publisher       string       `json:"publisher"`
	Subject         []string     `json:"subject"`
	PublishedPrint  *partialDate `json:"published-print"`
	PublishedOnline *partialDate `json:"published-online"`
	Issued          *partialDate `json:"issued"`
}

type workAuthor struct {
	Given       string        `json:"given"`
	Family      string        `json:"family"`
	Name        string        `json:"name"` // organisational authors
	ORCID       string        `json:"ORCID"`
	Sequence    string        `json:"sequence"`
	Affiliation []affiliation `json:"affiliation"`
}

type affiliation struct {
	Name string `json:"name"`
}

// partialDate is Crossref's [[year, month, day]] form; month and day may be missing
// and a wholly unknown date arrives as [[null]].
type partialDate struct {
	DateParts [][]int `json:"date-parts"`
}
