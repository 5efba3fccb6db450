package service

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/Aashish23092/payslip-extractor/utils/concepts"
	"github.com/Aashish23092/payslip-extractor/utils/layout"
	"github.com/Aashish23092/payslip-extractor/utils/payslip"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// glyphs lays s out one glyph per character, as ledongthuc/pdf reports
// simple-font text.
func glyphs(s string, x, y float64) []pdf.Text {
	const size, advance = 10.0, 5.0
	var out []pdf.Text
	for _, r := range s {
		out = append(out, pdf.Text{S: string(r), X: x, Y: y, W: advance, FontSize: size})
		x += advance
	}
	return out
}

func tokenTexts(texts []pdf.Text) []string {
	var out []string
	for _, tok := range AssembleTokens(texts) {
		out = append(out, tok.Text)
	}
	return out
}

func TestAssembleTokensSplitsOnSpaces(t *testing.T) {
	got := tokenTexts(glyphs("321 SALARIO BASE", 40, 700))

	assert.Equal(t, []string{"321", "SALARIO", "BASE"}, got)
}

func TestAssembleTokensSplitsOnGaps(t *testing.T) {
	texts := glyphs("SALARIO", 40, 700)
	texts = append(texts, glyphs("3750,00", 300, 700)...)

	tokens := AssembleTokens(texts)

	require.Len(t, tokens, 2)
	assert.Equal(t, "SALARIO", tokens[0].Text)
	assert.Equal(t, 40.0, tokens[0].X)
	assert.Equal(t, 35.0, tokens[0].Width)
	assert.Equal(t, 10.0, tokens[0].Height)
	assert.Equal(t, "3750,00", tokens[1].Text)
	assert.Equal(t, 300.0, tokens[1].X)
}

func TestAssembleTokensSplitsOnBaselineChange(t *testing.T) {
	texts := glyphs("AB", 40, 700)
	texts = append(texts, glyphs("CD", 50, 680)...)

	assert.Equal(t, []string{"AB", "CD"}, tokenTexts(texts))
}

func TestAssembleTokensSplitsMultiCharacterRuns(t *testing.T) {
	texts := []pdf.Text{{S: "LIQUIDO A RECIBIR", X: 100, Y: 200, W: 170, FontSize: 10}}

	tokens := AssembleTokens(texts)

	require.Len(t, tokens, 3)
	assert.Equal(t, "LIQUIDO", tokens[0].Text)
	assert.Equal(t, 100.0, tokens[0].X)
	assert.Equal(t, "A", tokens[1].Text)
	assert.Equal(t, 180.0, tokens[1].X)
	assert.Equal(t, "RECIBIR", tokens[2].Text)
	assert.Equal(t, 200.0, tokens[2].X)
}

func TestAssembleTokensNormalizesToNFC(t *testing.T) {
	// "I" followed by a combining acute accent.
	texts := glyphs("LI\u0301QUIDO", 0, 0)

	assert.Equal(t, []string{"L\u00cdQUIDO"}, tokenTexts(texts))
}

func TestAssembleTokensEmpty(t *testing.T) {
	assert.Empty(t, AssembleTokens(nil))
}

func TestExtractTokensRejectsNonPDF(t *testing.T) {
	_, err := NewPDFProcessor().ExtractTokens([]byte("hello, not a pdf"), "")

	assert.ErrorIs(t, err, ErrNotPDF)
}

// buildPDF writes a one-page PDF with one Courier text row per line.
func buildPDF(lines ...string) []byte {
	var content strings.Builder
	content.WriteString("BT\n/F1 12 Tf\n")
	y := 760
	for _, line := range lines {
		fmt.Fprintf(&content, "1 0 0 1 50 %d Tm\n(%s) Tj\n", y, line)
		y -= 20
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding" +
			" /FirstChar 32 /LastChar 126 /Widths [" + strings.TrimSpace(strings.Repeat("600 ", 95)) + "] >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func encryptPDF(t *testing.T, data []byte, password string) []byte {
	t.Helper()
	conf := model.NewAESConfiguration(password, password, 128)
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	var out bytes.Buffer
	require.NoError(t, api.Encrypt(bytes.NewReader(data), &out, conf))
	return out.Bytes()
}

func pageTexts(page layout.Page) []string {
	var out []string
	for _, tok := range page.Tokens {
		out = append(out, tok.Text)
	}
	return out
}

var netPayRows = []string{"FECHA DE ABONO 31 DE ENERO DE 2024", "LIQUIDO A RECIBIR 1234,56"}

func TestExtractTokensReadsPositionedText(t *testing.T) {
	doc, err := NewPDFProcessor().ExtractTokens(buildPDF(netPayRows...), "")
	require.NoError(t, err)

	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t,
		[]string{"FECHA", "DE", "ABONO", "31", "DE", "ENERO", "DE", "2024", "LIQUIDO", "A", "RECIBIR", "1234,56"},
		pageTexts(doc.Pages[0]))

	slip, err := payslip.NewParser(concepts.MustDefault()).Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", slip.SortableDate)
	assert.Equal(t, 1234.56, slip.NetPay)
}

func TestExtractTokensDecryptsWithPassword(t *testing.T) {
	encrypted := encryptPDF(t, buildPDF(netPayRows...), "pw")

	doc, err := NewPDFProcessor().ExtractTokens(encrypted, "pw")
	require.NoError(t, err)

	require.Len(t, doc.Pages, 1)
	assert.Contains(t, pageTexts(doc.Pages[0]), "RECIBIR")
	assert.Contains(t, pageTexts(doc.Pages[0]), "1234,56")
}

func TestExtractTokensWrongPassword(t *testing.T) {
	encrypted := encryptPDF(t, buildPDF(netPayRows...), "pw")

	doc, err := NewPDFProcessor().ExtractTokens(encrypted, "nope")

	assert.Error(t, err)
	assert.Empty(t, doc.Pages)
}

func TestExtractTokensEncryptedWithoutPassword(t *testing.T) {
	encrypted := encryptPDF(t, buildPDF(netPayRows...), "pw")

	_, err := NewPDFProcessor().ExtractTokens(encrypted, "")

	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestExtractTokensTruncatedEncryptedFile(t *testing.T) {
	encrypted := encryptPDF(t, buildPDF(netPayRows...), "pw")
	truncated := encrypted[:len(encrypted)/2]

	var err error
	assert.NotPanics(t, func() {
		_, err = NewPDFProcessor().ExtractTokens(truncated, "pw")
	})
	assert.Error(t, err)
}
