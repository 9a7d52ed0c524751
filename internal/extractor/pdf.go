// Package extractor recovers text from statement PDFs. Extraction methods
// run in order of fidelity and the first one whose output passes the
// readability gate wins; garbage output is never returned.
package extractor

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-engine/internal/models"
)

// Result of one extraction: per-page content plus the method that produced
// it. Pages carry reconstructed line text and, when the layout allowed it,
// table rows cut into cells.
type Result struct {
	Pages  []models.Page
	Method string
}

// Extract reads a PDF file and returns its content page by page. The
// structured library runs first, then a raw content-stream scan, then the
// external pdftotext tool. The password is used for protected files; pass
// "" for unprotected ones.
func Extract(filePath, password string) (*Result, error) {
	res, libErr := extractWithLibrary(filePath, password)
	if libErr == nil && isReadable(res.Pages) {
		return res, nil
	}

	rawPages, rawErr := extractRaw(filePath)
	if rawErr == nil && isReadable(rawPages) {
		return &Result{Pages: rawPages, Method: "raw"}, nil
	}

	pages, popplerErr := extractWithPdftotext(filePath, password)
	if popplerErr == nil && isReadable(pages) {
		return &Result{Pages: pages, Method: "pdftotext"}, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("text extraction failed: %w; the file may be scanned or use custom font encodings", libErr)
	}
	return nil, fmt.Errorf("no readable text in %s; the file may be scanned or use custom font encodings", filepath.Base(filePath))
}

// extractWithLibrary tries the structured library's methods in order. The
// library panics on some malformed files, so the whole pass is contained.
func extractWithLibrary(filePath, password string) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	f, r, err := openReader(filePath, password)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages := extractByRow(r, numPages)
	if isReadable(pages) {
		return &Result{Pages: pages, Method: "text"}, nil
	}

	pages = extractByContent(r, numPages)
	if isReadable(pages) {
		return &Result{Pages: pages, Method: "text"}, nil
	}

	pages = extractByPlainText(r, numPages)
	if isReadable(pages) {
		return &Result{Pages: pages, Method: "text"}, nil
	}

	if page, ok := extractByReader(r); ok {
		return &Result{Pages: []models.Page{page}, Method: "text"}, nil
	}

	return &Result{Pages: pages, Method: "text"}, nil
}

// openReader opens the file through the encrypted-capable reader. The
// reader tries the empty user password first, which unlocks most
// "protected" statements, before the supplied one.
func openReader(filePath, password string) (*os.File, *pdf.Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	tried := false
	r, err := pdf.NewReaderEncrypted(f, fi.Size(), func() string {
		if tried || password == "" {
			return ""
		}
		tried = true
		return password
	})
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, r, nil
}

// extractByRow keeps the library's row segmentation and cuts each row into
// cells on horizontal gaps, so dialects that understand table rows can read
// them directly.
func extractByRow(r *pdf.Reader, numPages int) []models.Page {
	var pages []models.Page
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		var cellRows [][]string
		for _, row := range rows {
			cells := splitCells(row.Content)
			if len(cells) == 0 {
				continue
			}
			cellRows = append(cellRows, cells)
			lines = append(lines, strings.Join(cells, " "))
		}
		pages = append(pages, models.Page{
			Number: i,
			Text:   strings.Join(lines, "\n"),
			Rows:   cellRows,
		})
	}
	return pages
}

// splitCells joins a row's words left to right, starting a new cell
// wherever the gap to the previous word exceeds the column threshold.
func splitCells(words []pdf.Text) []string {
	const columnGap = 15

	var cells []string
	var cur strings.Builder
	prevEnd := 0.0
	for _, w := range words {
		if strings.TrimSpace(w.S) == "" {
			continue
		}
		if cur.Len() > 0 {
			if w.X-prevEnd > columnGap {
				cells = append(cells, strings.TrimSpace(cur.String()))
				cur.Reset()
			} else {
				cur.WriteString(" ")
			}
		}
		cur.WriteString(w.S)
		prevEnd = w.X + w.W
	}
	if cur.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cur.String()))
	}
	return cells
}

// extractByContent reconstructs rows from raw text objects: group by Y,
// order by X. Covers files whose row index the library cannot build.
func extractByContent(r *pdf.Reader, numPages int) []models.Page {
	var pages []models.Page
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rowMap := make(map[int][]pdf.Text)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], t)
		}

		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		// PDF y grows bottom to top.
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		var cellRows [][]string
		for _, y := range yKeys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool { return items[a].X < items[b].X })
			cells := splitCells(items)
			if len(cells) == 0 {
				continue
			}
			cellRows = append(cellRows, cells)
			lines = append(lines, strings.Join(cells, " "))
		}
		pages = append(pages, models.Page{
			Number: i,
			Text:   strings.Join(lines, "\n"),
			Rows:   cellRows,
		})
	}
	return pages
}

// extractByPlainText uses the per-page plain text path with the page's own
// font map. No row structure survives this method.
func extractByPlainText(r *pdf.Reader, numPages int) []models.Page {
	var pages []models.Page
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fontNames := page.Fonts()
		fonts := make(map[string]*pdf.Font)
		for _, name := range fontNames {
			f := page.Font(name)
			fonts[name] = &f
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, models.Page{Number: i, Text: text})
		}
	}
	return pages
}

// extractByReader is the whole-document plain text path, a single page
// with no boundaries. Last of the library methods for that reason.
func extractByReader(r *pdf.Reader) (models.Page, bool) {
	reader, err := r.GetPlainText()
	if err != nil {
		return models.Page{}, false
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Page{}, false
	}
	text := strings.TrimSpace(string(data))
	page := models.Page{Number: 1, Text: text}
	if !isReadable([]models.Page{page}) {
		return models.Page{}, false
	}
	return page, true
}

// extractWithPdftotext shells out to poppler-utils when both Go paths
// fail. Page boundaries are preserved by extracting page by page.
func extractWithPdftotext(filePath, password string) ([]models.Page, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	withPassword := func(args ...string) []string {
		if password != "" {
			return append([]string{"-upw", password}, args...)
		}
		return args
	}

	numPages := 1
	if out, err := exec.Command("pdfinfo", withPassword(filePath)...).Output(); err == nil {
		for _, line := range strings.Split(string(out), "\n") {
			if strings.HasPrefix(line, "Pages:") {
				if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))); err == nil && n > 0 {
					numPages = n
				}
			}
		}
	}

	var pages []models.Page
	for i := 1; i <= numPages; i++ {
		pageStr := strconv.Itoa(i)
		out, err := exec.Command("pdftotext", withPassword("-layout", "-f", pageStr, "-l", pageStr, filePath, "-")...).Output()
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, models.Page{Number: i, Text: text})
		}
	}

	if len(pages) == 0 {
		out, err := exec.Command("pdftotext", withPassword("-layout", filePath, "-")...).Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext failed: %w", err)
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			return []models.Page{{Number: 1, Text: text}}, nil
		}
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	return pages, nil
}

// statementWords is the vocabulary gate: extracted text that contains none
// of these is treated as undecoded garbage whatever its character mix.
var statementWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "upi",
	"neft", "imps", "narration", "reference", "paid", "received",
	"withdrawal", "deposit", "number", "page", "period",
}

func containsStatementWords(pages []models.Page) bool {
	var combined strings.Builder
	for _, p := range pages {
		combined.WriteString(strings.ToLower(p.Text))
		combined.WriteString(" ")
	}
	text := combined.String()
	for _, word := range statementWords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// textQuality is the ratio of plainly readable characters to total. The
// check is strict ASCII plus the currency symbols statements use;
// unicode.IsLetter is too broad and passes the accented soup produced by
// identity-encoded fonts.
func textQuality(pages []models.Page) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page.Text {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				r == '.' || r == ',' || r == '-' || r == '/' || r == ':' ||
				r == ';' || r == '(' || r == ')' || r == '\'' || r == '"' ||
				r == '₹' || r == '$' || r == '£' || r == '€' || r == '%' ||
				r == '&' || r == '@' || r == '#' || r == '!' || r == '?' ||
				r == '+' || r == '=' || r == '*' || r == '|' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadable requires enough text, a high readable-character ratio and at
// least one word a statement would contain.
func isReadable(pages []models.Page) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsStatementWords(pages)
}

func totalTextLen(pages []models.Page) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p.Text))
	}
	return n
}
