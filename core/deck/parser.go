// Package deck parses presentation decks (.pptx/.ppt) into per-slide records.
//
// A deck is a zip archive containing XML parts; slide markup lives at
// ppt/slides/slide{N}.xml and optional speaker notes at
// ppt/notesSlides/notesSlide{N}.xml.
package deck

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Slide is the normalized record extracted from one slide.
// Produced once by ParseDeck; never mutated afterwards.
type Slide struct {
	SlideNumber int      `json:"slide_number"` // 1-based
	Title       string   `json:"title"`
	Body        string   `json:"body"`    // newline-joined non-title paragraphs
	Bullets     []string `json:"bullets"` // individual paragraph lines (non-empty)
	Notes       string   `json:"notes"`   // speaker notes, empty if absent
}

// ParseError reports an archive-level failure: the upload is unusable as a
// whole and the caller should ask for a re-upload. Malformed individual
// slides do NOT produce a ParseError; they degrade to empty-slide defaults.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing deck: %s: %v", e.Reason, e.Err)
	}
	return "parsing deck: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	slideEntryRegex = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

	// notes slides ship editor boilerplate ("Click to edit Master text styles...")
	notesBoilerplateRegex = regexp.MustCompile(`(?i)^Click to edit`)

	titlePlaceholderTypes = map[string]bool{
		"title":    true,
		"ctrTitle": true,
	}
)

// ParseDeck opens the deck archive and extracts one Slide per slide entry,
// in numeric slide order ("slide10" sorts after "slide9", not after "slide1").
func ParseDeck(data []byte) ([]Slide, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Reason: "opening archive", Err: err}
	}

	type slideEntry struct {
		num  int
		file *zip.File
	}
	entries := make([]slideEntry, 0, len(zr.File))
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
		if m := slideEntryRegex.FindStringSubmatch(f.Name); m != nil {
			n, convErr := strconv.Atoi(m[1])
			if convErr != nil {
				continue
			}
			entries = append(entries, slideEntry{num: n, file: f})
		}
	}
	if len(entries) == 0 {
		return nil, &ParseError{Reason: "archive contains no slides"}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].num < entries[j].num })

	slides := make([]Slide, 0, len(entries))
	for i, entry := range entries {
		slideNum := i + 1 // renumber sequentially; archives may have gaps

		slide := emptySlide(slideNum)
		if data, readErr := readZipFile(entry.file); readErr == nil {
			slide = parseSlideXML(data, slideNum)
		}

		// sibling notes entry, if any
		notesPath := strings.Replace(entry.file.Name, "ppt/slides/", "ppt/notesSlides/", 1)
		notesPath = strings.Replace(notesPath, "slide", "notesSlide", 1)
		if notesFile, ok := files[notesPath]; ok {
			if data, readErr := readZipFile(notesFile); readErr == nil {
				slide.Notes = parseNotesXML(data)
			}
		}

		slides = append(slides, slide)
	}
	return slides, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

func emptySlide(n int) Slide {
	return Slide{
		SlideNumber: n,
		Title:       fmt.Sprintf("Slide %d", n),
		Bullets:     []string{},
	}
}

// parseSlideXML extracts title + body paragraphs from one slide's markup.
// A malformed slide degrades to the empty-slide defaults.
func parseSlideXML(data []byte, slideNum int) Slide {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return emptySlide(slideNum)
	}

	var title string
	paragraphs := make([]string, 0)

	for _, shape := range xmlquery.Find(doc, "//*[local-name()='sp']") {
		if isTitleShape(shape) {
			title = strings.TrimSpace(runText(shape))
		} else {
			paragraphs = append(paragraphs, shapeParagraphs(shape)...)
		}
	}

	// no title shape: promote the first body paragraph
	if title == "" && len(paragraphs) > 0 {
		title = paragraphs[0]
		paragraphs = paragraphs[1:]
	}
	if title == "" {
		title = fmt.Sprintf("Slide %d", slideNum)
	}

	return Slide{
		SlideNumber: slideNum,
		Title:       title,
		Body:        strings.Join(paragraphs, "\n"),
		Bullets:     paragraphs,
	}
}

// parseNotesXML extracts speaker notes, dropping editor boilerplate lines.
func parseNotesXML(data []byte) string {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	kept := make([]string, 0)
	for _, p := range xmlquery.Find(doc, "//*[local-name()='p']") {
		text := strings.TrimSpace(runText(p))
		if text == "" || notesBoilerplateRegex.MatchString(text) {
			continue
		}
		kept = append(kept, text)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// isTitleShape reports whether the shape declares a title placeholder
// (<p:ph type="title"> or <p:ph type="ctrTitle">).
func isTitleShape(shape *xmlquery.Node) bool {
	ph := xmlquery.FindOne(shape, ".//*[local-name()='ph']")
	if ph == nil {
		return false
	}
	return titlePlaceholderTypes[ph.SelectAttr("type")]
}

// runText concatenates the contents of all inline text runs (<a:t>) within
// the node, in document order, with no added separators.
func runText(node *xmlquery.Node) string {
	var sb strings.Builder
	for _, t := range xmlquery.Find(node, ".//*[local-name()='t']") {
		sb.WriteString(t.InnerText())
	}
	return sb.String()
}

// shapeParagraphs returns one string per paragraph element (<a:p>) in the
// shape, trimmed, with empty results dropped.
func shapeParagraphs(shape *xmlquery.Node) []string {
	out := make([]string, 0)
	for _, p := range xmlquery.Find(shape, ".//*[local-name()='p']") {
		if text := strings.TrimSpace(runText(p)); text != "" {
			out = append(out, text)
		}
	}
	return out
}
