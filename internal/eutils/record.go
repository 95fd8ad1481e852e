// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Text is element content with any inline markup (<i>, <sup>, ...)
// flattened into plain text.
type Text string

// UnmarshalXML concatenates all character data under the element.
func (t *Text) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.CharData:
			b.Write(v)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*t = Text(b.String())
				return nil
			}
			depth--
		}
	}
}

// String returns the trimmed text.
func (t Text) String() string { return strings.TrimSpace(string(t)) }

// articleSet is the EFetch PubmedArticleSet document.
type articleSet struct {
	XMLName  xml.Name    `xml:"PubmedArticleSet"`
	Articles []RawRecord `xml:"PubmedArticle"`
}

// RawRecord is one PubmedArticle as returned by EFetch. Only the fields the
// assembler reads are decoded. Empty text means absent; a nil group means
// the element was missing.
type RawRecord struct {
	Citation *Citation `xml:"MedlineCitation"`
}

// Citation is the MedlineCitation element.
type Citation struct {
	PMID         Text          `xml:"PMID"`
	Article      *Article      `xml:"Article"`
	KeywordLists []KeywordList `xml:"KeywordList"`
}

// KeywordList is one keyword group; a record may carry several.
type KeywordList struct {
	Owner    string `xml:"Owner,attr"`
	Keywords []Text `xml:"Keyword"`
}

// Article is the Article element of a citation.
type Article struct {
	Journal      *Journal    `xml:"Journal"`
	Title        Text        `xml:"ArticleTitle"`
	Pagination   *Pagination `xml:"Pagination"`
	Abstract     *Abstract   `xml:"Abstract"`
	AuthorList   *AuthorList `xml:"AuthorList"`
	Languages    []Text      `xml:"Language"`
	ArticleDates []DateParts `xml:"ArticleDate"`
}

// Journal is the journal sub-structure.
type Journal struct {
	Title           Text          `xml:"Title"`
	ISOAbbreviation Text          `xml:"ISOAbbreviation"`
	Issue           *JournalIssue `xml:"JournalIssue"`
}

// JournalIssue holds the volume and issue tokens and the journal date.
type JournalIssue struct {
	Volume  Text       `xml:"Volume"`
	Issue   Text       `xml:"Issue"`
	PubDate *DateParts `xml:"PubDate"`
}

// DateParts is a PubDate or ArticleDate element.
type DateParts struct {
	Year        Text `xml:"Year"`
	Month       Text `xml:"Month"`
	Day         Text `xml:"Day"`
	Season      Text `xml:"Season"`
	MedlineDate Text `xml:"MedlineDate"`
}

// Pagination carries either explicit start/end pages or the combined
// MedlinePgn text.
type Pagination struct {
	StartPage  Text `xml:"StartPage"`
	EndPage    Text `xml:"EndPage"`
	MedlinePgn Text `xml:"MedlinePgn"`
}

// Abstract is a list of possibly labelled sections.
type Abstract struct {
	Sections []Text `xml:"AbstractText"`
}

// AuthorList is the article's author list.
type AuthorList struct {
	CompleteYN string   `xml:"CompleteYN,attr"`
	Authors    []Author `xml:"Author"`
}

// Author is one author entry. Collective (group) authors have no personal
// name parts.
type Author struct {
	LastName       Text `xml:"LastName"`
	ForeName       Text `xml:"ForeName"`
	Initials       Text `xml:"Initials"`
	CollectiveName Text `xml:"CollectiveName"`
}

// ParseArticleSet decodes an EFetch PubmedArticleSet document.
func ParseArticleSet(r io.Reader) ([]RawRecord, error) {
	var set articleSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing PubmedArticleSet: %w", err)
	}
	return set.Articles, nil
}
