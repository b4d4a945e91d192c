// Package bundle extracts typed assets from the compressed output bundle
// returned by the composition service. Page order is encoded in entry names,
// not in the archive layout.
package bundle

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"server/internal/domain"
	"server/pkg/zip"
)

// PageImage is one rendered preview page.
type PageImage struct {
	Name string
	Page int
	MIME string
	Data []byte
}

// Document is the final print-ready file.
type Document struct {
	Filename string
	Data     []byte
}

// pageToken finds the page-number token in entry names such as
// "brochure_p003.jpg". Entries without a token sort as page 0.
var pageToken = regexp.MustCompile(`(?i)p(\d+)`)

// unsafeFilename matches everything that may not appear in a download
// filename header.
var unsafeFilename = regexp.MustCompile(`[^\w.-]`)

// ExtractImages returns all image entries of the bundle ordered by their
// embedded page number.
func ExtractImages(raw []byte) ([]PageImage, error) {
	entries, err := zip.Unpack(raw)
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	var pages []PageImage
	for _, e := range entries {
		mime, ok := imageMIME(e.Name)
		if !ok {
			continue
		}
		pages = append(pages, PageImage{
			Name: path.Base(e.Name),
			Page: pageNumber(e.Name),
			MIME: mime,
			Data: e.Data,
		})
	}
	if len(pages) == 0 {
		return nil, domain.ErrNoImagesInOutput
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
	return pages, nil
}

// ExtractDocument returns the single PDF entry of the bundle with a filename
// safe for use in a Content-Disposition header.
func ExtractDocument(raw []byte) (*Document, error) {
	entries, err := zip.Unpack(raw)
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	for _, e := range entries {
		if strings.EqualFold(path.Ext(e.Name), ".pdf") {
			return &Document{
				Filename: SanitizeFilename(path.Base(e.Name)),
				Data:     e.Data,
			}, nil
		}
	}
	return nil, domain.ErrNoDocumentInOutput
}

// SanitizeFilename replaces every character outside [A-Za-z0-9_.-] with an
// underscore.
func SanitizeFilename(name string) string {
	return unsafeFilename.ReplaceAllString(name, "_")
}

func pageNumber(name string) int {
	m := pageToken.FindStringSubmatch(path.Base(name))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func imageMIME(name string) (string, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", true
	case ".png":
		return "image/png", true
	default:
		return "", false
	}
}
