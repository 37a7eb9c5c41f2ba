package deck

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	slideXMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>`
	slideXMLFooter = `</p:spTree></p:cSld></p:sld>`
)

func titleShape(phType, text string) string {
	return fmt.Sprintf(
		`<p:sp><p:nvSpPr><p:nvPr><p:ph type=%q/></p:nvPr></p:nvSpPr>`+
			`<p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`,
		phType, text)
}

func bodyShape(paragraphs ...string) string {
	var sb bytes.Buffer
	sb.WriteString(`<p:sp><p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr><p:txBody>`)
	for _, p := range paragraphs {
		sb.WriteString(fmt.Sprintf(`<a:p><a:r><a:t>%s</a:t></a:r></a:p>`, p))
	}
	sb.WriteString(`</p:txBody></p:sp>`)
	return sb.String()
}

func slideXML(shapes ...string) string {
	var sb bytes.Buffer
	sb.WriteString(slideXMLHeader)
	for _, s := range shapes {
		sb.WriteString(s)
	}
	sb.WriteString(slideXMLFooter)
	return sb.String()
}

// buildDeck zips the given entries (path -> content) into an in-memory archive.
func buildDeck(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseDeck_numericOrdering(t *testing.T) {
	// slide10 must sort after slide9, not lexicographically after slide1
	entries := make(map[string]string, 10)
	for i := 1; i <= 10; i++ {
		entries[fmt.Sprintf("ppt/slides/slide%d.xml", i)] = slideXML(
			titleShape("title", fmt.Sprintf("Title %d", i)),
		)
	}
	slides, err := ParseDeck(buildDeck(t, entries))
	require.NoError(t, err)
	require.Len(t, slides, 10)
	for i, slide := range slides {
		assert.Equal(t, i+1, slide.SlideNumber)
		assert.Equal(t, fmt.Sprintf("Title %d", i+1), slide.Title)
	}
}

func TestParseDeck_titleShapeDetection(t *testing.T) {
	for _, phType := range []string{"title", "ctrTitle"} {
		data := buildDeck(t, map[string]string{
			"ppt/slides/slide1.xml": slideXML(
				titleShape(phType, "Opening Strong"),
				bodyShape("Hook the audience", "State your purpose"),
			),
		})
		slides, err := ParseDeck(data)
		require.NoError(t, err)
		require.Len(t, slides, 1)
		assert.Equal(t, "Opening Strong", slides[0].Title)
		assert.Equal(t, []string{"Hook the audience", "State your purpose"}, slides[0].Bullets)
		assert.Equal(t, "Hook the audience\nState your purpose", slides[0].Body)
	}
}

func TestParseDeck_titleFallbackPromotesFirstBullet(t *testing.T) {
	data := buildDeck(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML(bodyShape("Hello", "World")),
	})
	slides, err := ParseDeck(data)
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, "Hello", slides[0].Title)
	assert.Equal(t, []string{"World"}, slides[0].Bullets)
	assert.Equal(t, "World", slides[0].Body)
}

func TestParseDeck_emptySlideDefaults(t *testing.T) {
	data := buildDeck(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML(titleShape("title", "First")),
		"ppt/slides/slide2.xml": slideXML(), // no shapes at all
	})
	slides, err := ParseDeck(data)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "Slide 2", slides[1].Title)
	assert.Equal(t, "", slides[1].Body)
	assert.Empty(t, slides[1].Bullets)
}

func TestParseDeck_malformedSlideDegrades(t *testing.T) {
	data := buildDeck(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML(titleShape("title", "Fine")),
		"ppt/slides/slide2.xml": `<p:sld><unclosed`,
	})
	slides, err := ParseDeck(data)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "Fine", slides[0].Title)
	assert.Equal(t, "Slide 2", slides[1].Title)
}

func TestParseDeck_textRunsConcatenatedWithoutSeparators(t *testing.T) {
	// formatting splits one sentence across several runs
	shape := `<p:sp><p:txBody><a:p>` +
		`<a:r><a:t>Speak </a:t></a:r>` +
		`<a:r><a:t>with </a:t></a:r>` +
		`<a:r><a:t>confidence</a:t></a:r>` +
		`</a:p></p:txBody></p:sp>`
	data := buildDeck(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML(titleShape("title", "T"), shape),
	})
	slides, err := ParseDeck(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Speak with confidence"}, slides[0].Bullets)
}

func TestParseDeck_speakerNotes(t *testing.T) {
	notes := slideXML(
		bodyShape("Click to edit Master text styles", "Remind them to breathe", "Pause here"),
	)
	data := buildDeck(t, map[string]string{
		"ppt/slides/slide1.xml":           slideXML(titleShape("title", "Pacing")),
		"ppt/notesSlides/notesSlide1.xml": notes,
	})
	slides, err := ParseDeck(data)
	require.NoError(t, err)
	assert.Equal(t, "Remind them to breathe Pause here", slides[0].Notes)
}

func TestParseDeck_notCoveredSlideHasNoNotes(t *testing.T) {
	data := buildDeck(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML(titleShape("title", "Solo")),
	})
	slides, err := ParseDeck(data)
	require.NoError(t, err)
	assert.Equal(t, "", slides[0].Notes)
}

func TestParseDeck_corruptArchive(t *testing.T) {
	_, err := ParseDeck([]byte("definitely not a zip archive"))
	require.Error(t, err)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParseDeck_noSlideEntries(t *testing.T) {
	data := buildDeck(t, map[string]string{
		"docProps/app.xml": `<Properties/>`,
	})
	_, err := ParseDeck(data)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "no slides")
}

func TestParseDeck_gapsRenumberSequentially(t *testing.T) {
	data := buildDeck(t, map[string]string{
		"ppt/slides/slide2.xml": slideXML(titleShape("title", "A")),
		"ppt/slides/slide5.xml": slideXML(titleShape("title", "B")),
	})
	slides, err := ParseDeck(data)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, 1, slides[0].SlideNumber)
	assert.Equal(t, 2, slides[1].SlideNumber)
	assert.Equal(t, "A", slides[0].Title)
	assert.Equal(t, "B", slides[1].Title)
}
