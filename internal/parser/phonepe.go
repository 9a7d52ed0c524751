package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-engine/internal/models"
	"github.com/insightdelivered/statement-engine/internal/normalize"
)

// Patterns for the peer-to-peer transfer statement layout. The date can sit
// anywhere on its line; "Sept" must precede "Sep" in the alternation so the
// four-letter form wins.
var (
	phonepeDatePattern  = regexp.MustCompile(`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)\s+\d{1,2},\s+\d{4}`)
	phonepeTimePattern  = regexp.MustCompile(`(\d{1,2}:\d{2}\s*(?:am|pm|AM|PM))`)
	phonepeBareTime     = regexp.MustCompile(`^\d{1,2}:\d{2}`)
	phonepeTypeWord     = regexp.MustCompile(`(?i)\b(DEBIT|CREDIT)\b`)
	phonepeTypeAmount   = regexp.MustCompile(`(?i)^(DEBIT|CREDIT)\s+₹?\s*([\d,]+(?:\.\d{1,2})?)\s*(.*)$`)
	phonepeTypedAmount  = regexp.MustCompile(`(?i)\b(?:DEBIT|CREDIT)\s+₹\s*([\d,]+\.?\d*)`)
	phonepeRupeeAmount  = regexp.MustCompile(`₹\s*([\d,]+\.?\d*)`)
	phonepeBareAmount   = regexp.MustCompile(`\b([\d,]+\.?\d{2})\b`)
	phonepeTxnIDPattern = regexp.MustCompile(`Transaction ID\s+(.+)`)
	phonepeUTRPattern   = regexp.MustCompile(`UTR No\.\s+(.+)`)
)

// counterpartyPrefixes introduce the other party in the detail text; the
// wording varies with the transfer direction.
var counterpartyPrefixes = []string{"Paid to", "Received from", "Payment to"}

// phonepeState enumerates the record-reader states. A record occupies
// consecutive lines in a fixed order; each state consumes the line it
// expects, and a mismatch flushes the record under way and resumes date
// scanning at the mismatched line.
type phonepeState int

const (
	stateSeekDate phonepeState = iota
	stateReadTime
	stateReadTypeAmount
	stateReadID
	stateReadUTR
	stateReadCounterparty
)

// phonepeStep reads one line in one state. It returns the next state and
// whether the line was consumed; an unconsumed line is re-examined in the
// returned state.
type phonepeStep func(p *PhonePeParser, rec *phonepeRecord, line string) (phonepeState, bool)

var phonepeTransitions = map[phonepeState]phonepeStep{
	stateSeekDate:         (*PhonePeParser).readDateLine,
	stateReadTime:         (*PhonePeParser).readTimeLine,
	stateReadTypeAmount:   (*PhonePeParser).readTypeAmountLine,
	stateReadID:           (*PhonePeParser).readIDLine,
	stateReadUTR:          (*PhonePeParser).readUTRLine,
	stateReadCounterparty: (*PhonePeParser).readCounterpartyLine,
}

// phonepeRecord is the transaction under construction plus layout flags.
type phonepeRecord struct {
	tx models.Transaction
	// inline marks records whose type and amount arrived on the date line
	// itself; the dedicated type/amount state is skipped for those.
	inline bool
}

// PhonePeParser reads the strictly positional transaction blocks of
// peer-to-peer transfer statements: date, time, type with amount and
// counterparty, then optional transaction id, UTR and payment-instrument
// lines. Missing trailing lines are tolerated; anything else restarts the
// scan so one bad block never desynchronises the rest of the page.
type PhonePeParser struct {
	opts Options
}

func (p *PhonePeParser) Format() models.Format { return models.FormatPhonePe }

func (p *PhonePeParser) ParseLines(lines []string) ([]models.Transaction, error) {
	txns := make([]models.Transaction, 0)
	state := stateSeekDate
	rec := phonepeRecord{}

	flush := func() {
		if rec.tx.Date != "" && (rec.tx.Amount != "" || rec.tx.To != "") {
			if rec.tx.Type == "" {
				rec.tx.Type = models.TypeUnknown
			}
			txns = append(txns, rec.tx)
		}
		rec = phonepeRecord{}
	}

	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])
		next, consumed := phonepeTransitions[state](p, &rec, line)
		if next == stateSeekDate && state != stateSeekDate {
			flush()
		}
		state = next
		if consumed {
			i++
		}
	}
	flush()
	return txns, nil
}

func (p *PhonePeParser) readDateLine(rec *phonepeRecord, line string) (phonepeState, bool) {
	loc := phonepeDatePattern.FindStringIndex(line)
	if loc == nil {
		return stateSeekDate, true
	}
	rec.tx.Date = line[loc[0]:loc[1]]
	if rest := strings.TrimSpace(line[loc[1]:]); rest != "" {
		p.readDetail(rec, rest)
		rec.inline = rec.tx.Amount != "" || rec.tx.To != ""
	}
	return stateReadTime, true
}

func (p *PhonePeParser) readTimeLine(rec *phonepeRecord, line string) (phonepeState, bool) {
	switch {
	case phonepeTimePattern.MatchString(line):
		rec.tx.Time = strings.TrimSpace(phonepeTimePattern.FindStringSubmatch(line)[1])
	case phonepeBareTime.MatchString(line):
		rec.tx.Time = strings.Fields(line)[0]
	default:
		return stateSeekDate, false
	}
	if rec.inline {
		return stateReadID, true
	}
	return stateReadTypeAmount, true
}

func (p *PhonePeParser) readTypeAmountLine(rec *phonepeRecord, line string) (phonepeState, bool) {
	m := phonepeTypeAmount.FindStringSubmatch(line)
	if m == nil {
		return stateSeekDate, false
	}
	rec.tx.Type = strings.ToUpper(m[1])
	rec.tx.Amount = normalize.FormatAmount(m[2])
	p.setCounterparty(rec, strings.TrimSpace(m[3]))
	return stateReadID, true
}

func (p *PhonePeParser) readIDLine(rec *phonepeRecord, line string) (phonepeState, bool) {
	m := phonepeTxnIDPattern.FindStringSubmatch(line)
	if m == nil {
		return stateSeekDate, false
	}
	rec.tx.TransactionID = strings.TrimSpace(m[1])
	return stateReadUTR, true
}

func (p *PhonePeParser) readUTRLine(rec *phonepeRecord, line string) (phonepeState, bool) {
	m := phonepeUTRPattern.FindStringSubmatch(line)
	if m == nil {
		return stateSeekDate, false
	}
	rec.tx.UTRNumber = strings.TrimSpace(m[1])
	return stateReadCounterparty, true
}

func (p *PhonePeParser) readCounterpartyLine(rec *phonepeRecord, line string) (phonepeState, bool) {
	for _, prefix := range []string{"Paid by", "Credited to"} {
		if strings.HasPrefix(line, prefix) {
			rec.tx.PaidBy = strings.TrimSpace(strings.TrimPrefix(line, prefix))
			return stateSeekDate, true
		}
	}
	return stateSeekDate, false
}

// readDetail pulls type, amount and counterparty out of free text riding on
// the date line. Amount recovery tries three shapes in turn: the amount
// glued to the type word, any rupee-marked number before the first pipe,
// then a bare decimal, rejecting digit runs too long to be money.
func (p *PhonePeParser) readDetail(rec *phonepeRecord, text string) {
	if m := phonepeTypeWord.FindStringSubmatch(text); m != nil {
		rec.tx.Type = strings.ToUpper(m[1])
	}

	first := text
	if idx := strings.Index(first, "|"); idx >= 0 {
		first = first[:idx]
	}

	amountToken := ""
	if m := phonepeTypedAmount.FindStringSubmatch(text); m != nil {
		amountToken = m[1]
	} else if m := phonepeRupeeAmount.FindStringSubmatch(first); m != nil {
		amountToken = m[1]
	} else if m := phonepeBareAmount.FindStringSubmatch(first); m != nil {
		digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
		if len(digits) <= 6 {
			amountToken = m[1]
		}
	}
	if amountToken != "" {
		rec.tx.Amount = normalize.FormatAmount(amountToken)
	}

	detail := phonepeTypeWord.ReplaceAllString(text, "")
	if amountToken != "" {
		detail = strings.ReplaceAll(detail, "₹"+amountToken, "")
		detail = strings.ReplaceAll(detail, amountToken, "")
	}
	p.setCounterparty(rec, collapseSpaces(strings.Trim(detail, " |")))
}

// setCounterparty stores the other party. Recharge records keep the whole
// detail text since they name a service rather than a payee.
func (p *PhonePeParser) setCounterparty(rec *phonepeRecord, detail string) {
	if detail == "" {
		return
	}
	if strings.Contains(strings.ToLower(detail), "recharged") {
		rec.tx.To = detail
		return
	}
	for _, prefix := range counterpartyPrefixes {
		if strings.Contains(detail, prefix) {
			detail = strings.TrimSpace(strings.ReplaceAll(detail, prefix, ""))
			break
		}
	}
	rec.tx.To = detail
}
