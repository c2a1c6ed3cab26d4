package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
)

const packageMediaType = "application/oebps-package+xml"

type container struct {
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfPackage struct {
	XMLName  xml.Name     `xml:"package"`
	Version  string       `xml:"version,attr"`
	Metadata opfMetadata  `xml:"metadata"`
	Manifest []opfItem    `xml:"manifest>item"`
	Spine    []opfItemRef `xml:"spine>itemref"`
}

// Element names match regardless of namespace, so dc:title and title both land here.
type opfMetadata struct {
	Titles       []dcElement `xml:"title"`
	Creators     []dcElement `xml:"creator"`
	Publishers   []dcElement `xml:"publisher"`
	Dates        []dcElement `xml:"date"`
	Languages    []dcElement `xml:"language"`
	Descriptions []dcElement `xml:"description"`
	Subjects     []dcElement `xml:"subject"`
	Identifiers  []dcElement `xml:"identifier"`
	Rights       []dcElement `xml:"rights"`
	Metas        []opfMeta   `xml:"meta"`
}

type dcElement struct {
	ID     string `xml:"id,attr"`
	Scheme string `xml:"scheme,attr"`
	Role   string `xml:"role,attr"`
	Value  string `xml:",chardata"`
}

type opfMeta struct {
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"`
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Value    string `xml:",chardata"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// newDecoder accepts package documents declared in legacy encodings.
func newDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false
	return dec
}

// parseContainer returns the first package rootfile path, or "".
func parseContainer(data []byte) string {
	var c container
	if err := newDecoder(data).Decode(&c); err != nil {
		return ""
	}
	for _, rf := range c.RootFiles {
		if rf.MediaType == packageMediaType && rf.FullPath != "" {
			return rf.FullPath
		}
	}
	for _, rf := range c.RootFiles {
		if rf.FullPath != "" {
			return rf.FullPath
		}
	}
	return ""
}

func parsePackage(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := newDecoder(data).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackageParse, err)
	}
	return &pkg, nil
}

// Item is a manifest entry with its href resolved to an archive path.
type Item struct {
	ID         string
	Path       string
	MediaType  string
	Properties []string
}

// IsDocument reports whether the item is an XHTML or HTML content document.
func (it Item) IsDocument() bool {
	return it.MediaType == "application/xhtml+xml" || it.MediaType == "text/html"
}

// IsImage reports whether the item is an image resource.
func (it Item) IsImage() bool {
	return strings.HasPrefix(it.MediaType, "image/")
}

// Manifest returns every manifest item in declaration order.
func (b *Book) Manifest() []Item {
	items := make([]Item, 0, len(b.pkg.Manifest))
	for _, mi := range b.pkg.Manifest {
		items = append(items, b.item(mi))
	}
	return items
}

// Spine returns the manifest items referenced by the spine, in reading
// order. Unknown idrefs are skipped.
func (b *Book) Spine() []Item {
	byID := make(map[string]opfItem, len(b.pkg.Manifest))
	for _, mi := range b.pkg.Manifest {
		byID[mi.ID] = mi
	}
	items := make([]Item, 0, len(b.pkg.Spine))
	for _, ref := range b.pkg.Spine {
		mi, ok := byID[ref.IDRef]
		if !ok {
			continue
		}
		items = append(items, b.item(mi))
	}
	return items
}

func (b *Book) item(mi opfItem) Item {
	return Item{
		ID:         mi.ID,
		Path:       b.resolve(mi.Href),
		MediaType:  strings.ToLower(strings.TrimSpace(mi.MediaType)),
		Properties: strings.Fields(mi.Properties),
	}
}
