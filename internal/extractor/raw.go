package extractor

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/insightdelivered/statement-engine/internal/models"
)

// extractRaw walks the raw PDF byte stream without the library: it locates
// content streams, inflates them, and decodes the Tj/TJ text operators,
// translating glyph codes through any ToUnicode CMap tables the file
// carries. This recovers text from CIDFont/Type0 files the structured
// reader gives up on. Encrypted files are out of reach here: their streams
// do not inflate.
func extractRaw(filePath string) ([]models.Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	streams := contentStreams(data)
	if len(streams) == 0 {
		return nil, nil
	}

	table := loadCMap(data)

	var texts []string
	for _, stream := range streams {
		if text := streamText(inflate(stream), table); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}

	// Stream boundaries rarely line up with page boundaries, so everything
	// lands on a single page; the parsers only need the line order.
	var merged strings.Builder
	for _, t := range texts {
		if merged.Len() > 0 {
			merged.WriteString("\n")
		}
		merged.WriteString(t)
	}
	return []models.Page{{Number: 1, Text: merged.String()}}, nil
}

// contentStreams finds all stream...endstream payloads.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte
	streamMarker := []byte("stream")
	endMarker := []byte("endstream")

	offset := 0
	for offset < len(data) {
		idx := bytes.Index(data[offset:], streamMarker)
		if idx < 0 {
			break
		}
		start := offset + idx + len(streamMarker)
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}

		endIdx := bytes.Index(data[start:], endMarker)
		if endIdx < 0 {
			break
		}
		if payload := data[start : start+endIdx]; len(payload) > 0 {
			streams = append(streams, payload)
		}
		offset = start + endIdx + len(endMarker)
	}
	return streams
}

// inflate zlib-decompresses a stream, passing it through untouched when it
// is not deflate data.
func inflate(data []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return data
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return data
	}
	return out
}

// Text-showing operators.
var (
	hexTjPattern   = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*Tj`)
	litTjPattern   = regexp.MustCompile(`\(([^)]*)\)\s*Tj`)
	tjArrayPattern = regexp.MustCompile(`\[([^\]]*)\]\s*TJ`)
	hexInArray     = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
	litInArray     = regexp.MustCompile(`\(([^)]*)\)`)
	tickPattern    = regexp.MustCompile(`\(([^)]*)\)\s*'`)
	// Td/TD reposition the text cursor; treated as a line break.
	tdPattern = regexp.MustCompile(`([\d.\-]+)\s+([\d.\-]+)\s+T[dD]`)
)

// streamText decodes the text operators of one content stream into lines.
func streamText(data []byte, table *cmap) string {
	content := string(data)
	if !strings.Contains(content, "Tj") && !strings.Contains(content, "TJ") &&
		!strings.Contains(content, "BT") {
		return ""
	}

	var lines []string
	for _, block := range textBlocks(content) {
		lines = append(lines, blockLines(block, table)...)
	}

	// No BT...ET structure: collect whatever the operators yield.
	if len(lines) == 0 {
		if text := looseText(content, table); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// textBlocks cuts the content into BT...ET spans.
func textBlocks(content string) []string {
	var blocks []string
	for {
		btIdx := strings.Index(content, "BT")
		if btIdx < 0 {
			break
		}
		etIdx := strings.Index(content[btIdx:], "ET")
		if etIdx < 0 {
			break
		}
		blocks = append(blocks, content[btIdx:btIdx+etIdx+2])
		content = content[btIdx+etIdx+2:]
	}
	return blocks
}

// blockLines walks one BT...ET block operator by operator, starting a new
// output line at every cursor move.
func blockLines(block string, table *cmap) []string {
	var lines []string
	var cur strings.Builder

	flush := func() {
		if line := strings.TrimSpace(cur.String()); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	for _, op := range strings.Split(block, "\n") {
		op = strings.TrimSpace(op)

		if op == "T*" || tdPattern.MatchString(op) {
			flush()
		}

		for _, m := range hexTjPattern.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeHex(m[1], table))
		}
		for _, m := range litTjPattern.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeLiteral(m[1], table))
		}
		for _, m := range tjArrayPattern.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeArray(m[1], table))
		}
		// The ' operator shows its string on the next line.
		for _, m := range tickPattern.FindAllStringSubmatch(op, -1) {
			flush()
			cur.WriteString(decodeLiteral(m[1], table))
		}
	}
	flush()
	return lines
}

// looseText decodes every text operator in the content regardless of block
// structure.
func looseText(content string, table *cmap) string {
	var parts []string
	for _, m := range hexTjPattern.FindAllStringSubmatch(content, -1) {
		if text := decodeHex(m[1], table); text != "" {
			parts = append(parts, text)
		}
	}
	for _, m := range litTjPattern.FindAllStringSubmatch(content, -1) {
		if text := decodeLiteral(m[1], table); text != "" {
			parts = append(parts, text)
		}
	}
	for _, m := range tjArrayPattern.FindAllStringSubmatch(content, -1) {
		if text := decodeArray(m[1], table); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// decodeHex decodes a <hex> string, through the CMap when one is loaded,
// then as UTF-16BE, then as plain bytes.
func decodeHex(hexStr string, table *cmap) string {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return ""
	}

	if text := table.decode(raw); text != "" {
		return text
	}

	if len(raw)%2 == 0 && len(raw) >= 2 {
		var b strings.Builder
		for i := 0; i+1 < len(raw); i += 2 {
			cp := rune(raw[i])<<8 | rune(raw[i+1])
			if unicode.IsPrint(cp) || cp == ' ' {
				b.WriteRune(cp)
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return printableOnly(string(raw))
}

// decodeLiteral decodes a (literal) string after resolving PDF escapes.
func decodeLiteral(s string, table *cmap) string {
	decoded := pdfUnescape(s)
	if text := table.decode([]byte(decoded)); text != "" && mostlyPrintable(text) {
		return text
	}
	return printableOnly(decoded)
}

// decodeArray decodes a TJ array: strings interleaved with kerning numbers.
// The numbers are dropped; the strings keep their order.
func decodeArray(arrayContent string, table *cmap) string {
	type piece struct {
		pos   int
		isHex bool
		val   string
	}
	var pieces []piece
	for _, idx := range hexInArray.FindAllStringSubmatchIndex(arrayContent, -1) {
		pieces = append(pieces, piece{pos: idx[0], isHex: true, val: arrayContent[idx[2]:idx[3]]})
	}
	for _, idx := range litInArray.FindAllStringSubmatchIndex(arrayContent, -1) {
		pieces = append(pieces, piece{pos: idx[0], val: arrayContent[idx[2]:idx[3]]})
	}
	sort.Slice(pieces, func(a, b int) bool { return pieces[a].pos < pieces[b].pos })

	var b strings.Builder
	for _, p := range pieces {
		if p.isHex {
			b.WriteString(decodeHex(p.val, table))
		} else {
			b.WriteString(decodeLiteral(p.val, table))
		}
	}
	return b.String()
}

// pdfUnescape resolves the escape sequences of PDF literal strings,
// including octal codes.
func pdfUnescape(s string) string {
	var buf strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(s[i])
			default:
				if s[i] >= '0' && s[i] <= '7' {
					val := int(s[i] - '0')
					for j := 1; j < 3 && i+j < len(s) && s[i+j] >= '0' && s[i+j] <= '7'; j++ {
						val = val*8 + int(s[i+j]-'0')
						i++
					}
					if val < 256 {
						buf.WriteByte(byte(val))
					}
				} else {
					buf.WriteByte(s[i])
				}
			}
		} else {
			buf.WriteByte(s[i])
		}
		i++
	}
	return buf.String()
}

// printableOnly strips control bytes but keeps spacing: TJ pieces carry
// their word boundaries as leading or trailing spaces, and lines are
// trimmed later as a whole.
func printableOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		return -1
	}, s)
}

func mostlyPrintable(s string) bool {
	if len(s) == 0 {
		return false
	}
	printable := 0
	runes := []rune(s)
	for _, r := range runes {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	return float64(printable)/float64(len(runes)) > 0.5
}
