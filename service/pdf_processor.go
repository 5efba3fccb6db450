package service

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Aashish23092/payslip-extractor/utils/layout"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotPDF           = errors.New("file is not a PDF document")
	ErrPasswordRequired = errors.New("PDF is encrypted; a valid password is required")
)

// wordGapRatio is the horizontal gap, as a fraction of the font size, above
// which two consecutive glyphs belong to different tokens.
const wordGapRatio = 0.25

// PDFProcessor is the token source: it turns PDF bytes into positioned text.
type PDFProcessor interface {
	ExtractTokens(pdfData []byte, password string) (layout.Document, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

func (p *pdfProcessor) ExtractTokens(pdfData []byte, password string) (doc layout.Document, err error) {
	// Both PDF libraries panic on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			doc = layout.Document{}
			err = fmt.Errorf("PDF reader crashed: %v", r)
		}
	}()

	if !mimetype.Detect(pdfData).Is("application/pdf") {
		return layout.Document{}, ErrNotPDF
	}

	// ledongthuc/pdf only opens documents with an empty user password, so
	// protected payslips are decrypted with pdfcpu first.
	if password != "" {
		pdfData, err = decrypt(pdfData, password)
		if err != nil {
			return layout.Document{}, err
		}
	}

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) || strings.Contains(err.Error(), "encrypt") {
			return layout.Document{}, ErrPasswordRequired
		}
		return layout.Document{}, fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPage := r.NumPage()
	doc.Pages = make([]layout.Page, 0, totalPage)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := layout.Page{Number: pageIndex}
		p := r.Page(pageIndex)
		if !p.V.IsNull() {
			page.Tokens = AssembleTokens(p.Content().Text)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func decrypt(pdfData []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	// Keep classic xref tables for ledongthuc/pdf.
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(pdfData), &out, conf); err != nil {
		return nil, fmt.Errorf("failed to decrypt PDF: %w", err)
	}
	return out.Bytes(), nil
}

// AssembleTokens merges the glyph runs of a content stream into word tokens.
// Runs join while they share a baseline and the gap between them stays under
// wordGapRatio of the font size. Whitespace always ends a token.
func AssembleTokens(texts []pdf.Text) []layout.TextToken {
	var (
		tokens  []layout.TextToken
		current *layout.TextToken
	)
	flush := func() {
		if current != nil {
			tokens = append(tokens, *current)
			current = nil
		}
	}

	for _, run := range splitRuns(texts) {
		if strings.TrimSpace(run.S) == "" {
			flush()
			continue
		}
		if current != nil && continues(*current, run) {
			current.Text += run.S
			current.Width = run.X + run.W - current.X
			continue
		}
		flush()
		current = &layout.TextToken{
			Text:   run.S,
			X:      run.X,
			Y:      run.Y,
			Width:  run.W,
			Height: run.FontSize,
		}
	}
	flush()

	for i := range tokens {
		tokens[i].Text = norm.NFC.String(tokens[i].Text)
	}
	return tokens
}

func continues(tok layout.TextToken, run pdf.Text) bool {
	if math.Abs(run.Y-tok.Y) > 0.5 {
		return false
	}
	gap := run.X - (tok.X + tok.Width)
	size := math.Max(run.FontSize, 1)
	return gap > -0.5*size && gap < wordGapRatio*size
}

// splitRuns breaks multi-character runs that contain whitespace into
// separate runs, spreading the run width evenly across its characters.
func splitRuns(texts []pdf.Text) []pdf.Text {
	out := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		n := utf8.RuneCountInString(t.S)
		if n <= 1 || !strings.ContainsAny(t.S, " \t\u00a0") {
			out = append(out, t)
			continue
		}
		perRune := t.W / float64(n)
		offset := 0
		for _, field := range strings.Fields(t.S) {
			start := strings.Index(t.S[offset:], field) + offset
			runesBefore := utf8.RuneCountInString(t.S[:start])
			width := perRune * float64(utf8.RuneCountInString(field))
			piece := t
			piece.S = field
			piece.X = t.X + perRune*float64(runesBefore)
			piece.W = width
			out = append(out, piece, pdf.Text{S: " ", X: piece.X + width, Y: t.Y, FontSize: t.FontSize})
			offset = start + len(field)
		}
	}
	return out
}
