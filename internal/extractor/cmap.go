package extractor

import (
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf16"
)

// cmap is a glyph-code to Unicode table built from the ToUnicode streams of
// a PDF. A nil cmap decodes nothing.
type cmap struct {
	chars map[string]string
}

var (
	bfCharBlock  = regexp.MustCompile(`(?s)beginbfchar\s*(.*?)\s*endbfchar`)
	bfRangeBlock = regexp.MustCompile(`(?s)beginbfrange\s*(.*?)\s*endbfrange`)
	hexToken     = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
)

// loadCMap scans the file's streams for ToUnicode tables and merges them
// into one. Returns nil when the file has none.
func loadCMap(data []byte) *cmap {
	var merged *cmap
	for _, stream := range contentStreams(data) {
		content := string(inflate(stream))
		if !strings.Contains(content, "beginbfchar") && !strings.Contains(content, "beginbfrange") {
			continue
		}
		parsed := parseCMap(content)
		if len(parsed.chars) == 0 {
			continue
		}
		if merged == nil {
			merged = &cmap{chars: make(map[string]string)}
		}
		for k, v := range parsed.chars {
			merged.chars[k] = v
		}
	}
	return merged
}

// parseCMap reads the bfchar and bfrange sections of one ToUnicode stream.
func parseCMap(content string) *cmap {
	cm := &cmap{chars: make(map[string]string)}

	// bfchar: <srcCode> <unicode> pairs.
	for _, block := range bfCharBlock.FindAllStringSubmatch(content, -1) {
		tokens := hexToken.FindAllStringSubmatch(block[1], -1)
		for i := 0; i+1 < len(tokens); i += 2 {
			src := strings.ToUpper(tokens[i][1])
			if uni := hexToUnicode(tokens[i+1][1]); uni != "" {
				cm.chars[src] = uni
			}
		}
	}

	// bfrange: <start> <end> <dstStart>, or <start> <end> [<u1> <u2> ...].
	for _, block := range bfRangeBlock.FindAllStringSubmatch(content, -1) {
		for _, line := range strings.Split(block[1], "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.Contains(line, "[") {
				cm.addRangeArray(line)
				continue
			}

			tokens := hexToken.FindAllStringSubmatch(line, -1)
			if len(tokens) < 3 {
				continue
			}
			start := hexToInt(tokens[0][1])
			end := hexToInt(tokens[1][1])
			dst := hexToInt(tokens[2][1])
			if start < 0 || end < 0 || dst < 0 {
				continue
			}
			srcLen := len(tokens[0][1])
			dstLen := len(tokens[2][1])
			for code := start; code <= end; code++ {
				if uni := hexToUnicode(intToHex(dst+(code-start), dstLen)); uni != "" {
					cm.chars[intToHex(code, srcLen)] = uni
				}
			}
		}
	}
	return cm
}

// addRangeArray handles the <start> <end> [<u1> <u2> ...] form, one array
// entry per consecutive code.
func (c *cmap) addRangeArray(line string) {
	bracket := strings.Index(line, "[")
	if bracket < 0 {
		return
	}
	tokens := hexToken.FindAllStringSubmatch(line[:bracket], -1)
	if len(tokens) < 2 {
		return
	}
	start := hexToInt(tokens[0][1])
	srcLen := len(tokens[0][1])

	for i, ut := range hexToken.FindAllStringSubmatch(line[bracket:], -1) {
		if uni := hexToUnicode(ut[1]); uni != "" {
			c.chars[intToHex(start+i, srcLen)] = uni
		}
	}
}

// decode translates raw string bytes through the table. Code width comes
// from the table's own keys; unmapped multi-byte codes fall back to a
// single-byte lookup, unmapped single bytes to printable ASCII.
func (c *cmap) decode(raw []byte) string {
	if c == nil || len(c.chars) == 0 {
		return ""
	}

	codeLen := 1
	for k := range c.chars {
		codeLen = len(k) / 2
		break
	}
	if codeLen < 1 {
		codeLen = 1
	}

	var b strings.Builder
	for i := 0; i <= len(raw)-codeLen; i += codeLen {
		chunk := raw[i : i+codeLen]
		key := strings.ToUpper(hex.EncodeToString(chunk))
		if uni, ok := c.chars[key]; ok {
			b.WriteString(uni)
			continue
		}
		if codeLen > 1 {
			short := strings.ToUpper(hex.EncodeToString(chunk[:1]))
			if uni, ok := c.chars[short]; ok {
				b.WriteString(uni)
				i -= codeLen - 1
				continue
			}
		}
		if codeLen == 1 && chunk[0] >= 32 && chunk[0] < 127 {
			b.WriteByte(chunk[0])
		}
	}
	return b.String()
}

func hexToInt(h string) int {
	val := 0
	for _, c := range strings.ToUpper(h) {
		val <<= 4
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'A' && c <= 'F':
			val += int(c-'A') + 10
		default:
			return -1
		}
	}
	return val
}

func intToHex(val, hexLen int) string {
	h := strings.ToUpper(hex.EncodeToString([]byte{byte(val >> 8), byte(val)}))
	if len(h) > hexLen {
		h = h[len(h)-hexLen:]
	}
	for len(h) < hexLen {
		h = "0" + h
	}
	return h
}

// hexToUnicode reads a hex-encoded UTF-16BE value, surrogate pairs
// included.
func hexToUnicode(h string) string {
	if len(h)%2 != 0 {
		h = "0" + h
	}
	data, err := hex.DecodeString(h)
	if err != nil {
		return ""
	}

	if len(data) == 2 {
		return string(rune(uint16(data[0])<<8 | uint16(data[1])))
	}
	if len(data) == 4 {
		hi := uint16(data[0])<<8 | uint16(data[1])
		lo := uint16(data[2])<<8 | uint16(data[3])
		if hi >= 0xD800 && hi <= 0xDBFF && lo >= 0xDC00 && lo <= 0xDFFF {
			return string(utf16.DecodeRune(rune(hi), rune(lo)))
		}
		return string(rune(hi)) + string(rune(lo))
	}

	var b strings.Builder
	for i := 0; i+1 < len(data); i += 2 {
		b.WriteRune(rune(uint16(data[i])<<8 | uint16(data[i+1])))
	}
	return b.String()
}
