package jats

import "encoding/xml"

// document is the subset of a JATS <article> this service reads
type document struct {
	XMLName xml.Name `xml:"article"`
	Lang    string   `xml:"lang,attr"`
	Front   front    `xml:"front"`
	Body    *mixed   `xml:"body"`
}

type front struct {
	JournalMeta journalMeta `xml:"journal-meta"`
	ArticleMeta articleMeta `xml:"article-meta"`
}

type journalMeta struct {
	JournalTitles []string `xml:"journal-title-group>journal-title"`
	Publisher     string   `xml:"publisher>publisher-name"`
}

type articleMeta struct {
	ArticleIDs    []articleID    `xml:"article-id"`
	ArticleTitle  mixed          `xml:"title-group>article-title"`
	Subtitle      mixed          `xml:"title-group>subtitle"`
	ContribGroups []contribGroup `xml:"contrib-group"`
	Affs          []aff          `xml:"aff"`
	PubDates      []pubDate      `xml:"pub-date"`
	Volume        string         `xml:"volume"`
	Issue         string         `xml:"issue"`
	FPage         string         `xml:"fpage"`
	LPage         string         `xml:"lpage"`
	ELocationID   string         `xml:"elocation-id"`
	Abstracts     []abstract     `xml:"abstract"`
	KwdGroups     []kwdGroup     `xml:"kwd-group"`
}

type articleID struct {
	PubIDType string `xml:"pub-id-type,attr"`
	Value     string `xml:",chardata"`
}

type contribGroup struct {
	Contribs []contrib `xml:"contrib"`
	Affs     []aff     `xml:"aff"`
}

type contrib struct {
	ContribType string      `xml:"contrib-type,attr"`
	Surname     string      `xml:"name>surname"`
	GivenNames  string      `xml:"name>given-names"`
	Collab      mixed       `xml:"collab"`
	Email       string      `xml:"email"`
	ContribIDs  []contribID `xml:"contrib-id"`
	Xrefs       []xref      `xml:"xref"`
	Affs        []aff       `xml:"aff"`
}

type contribID struct {
	Type  string `xml:"contrib-id-type,attr"`
	Value string `xml:",chardata"`
}

type xref struct {
	RefType string `xml:"ref-type,attr"`
	RID     string `xml:"rid,attr"`
}

type aff struct {
	ID           string   `xml:"id,attr"`
	Institutions []string `xml:"institution"`
	Inner        string   `xml:",innerxml"`
}

type pubDate struct {
	PubType  string `xml:"pub-type,attr"`
	DateType string `xml:"date-type,attr"`
	Format   string `xml:"publication-format,attr"`
	Year     string `xml:"year"`
	Month    string `xml:"month"`
	Day      string `xml:"day"`
}

type abstract struct {
	Type  string `xml:"abstract-type,attr"`
	Inner string `xml:",innerxml"`
}

type kwdGroup struct {
	Lang string  `xml:"lang,attr"`
	Kwds []mixed `xml:"kwd"`
}

// mixed keeps the raw content of an element that may hold inline markup
type mixed struct {
	Inner string `xml:",innerxml"`
}
