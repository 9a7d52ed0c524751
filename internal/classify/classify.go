// Package classify annotates extracted transactions with spending
// categories and recurring-payment signals. Everything here is keyword
// driven: no network calls, no models, deterministic output.
package classify

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/insightdelivered/statement-engine/internal/models"
)

// Subscription wording seen across card and account narrations.
var subscriptionKeywords = []string{
	"SUBSCRIPTION", "SUBSCR", "MEMBERSHIP", "RENEWAL", "AUTO PAY", "AUTOPAY",
	"AUTO-DEBIT", "RECURRING", "MONTHLY PLAN", "MONTHLY FEE", "MONTHLY CHARGES",
	"PLAN FEE", "UPI AUTOPAY", "UPI-AUTOPAY", "SI-HDFC", "STANDING INSTRUCTION",
	"MANDATE", "E-NACH", "ENACH", "SI BILLDESK", "AUTO PAYMENT",
	"AUTOMATIC PAYMENT", "AUTO-RENEW", "AUTO RENEW",
}

// Merchants that bill overwhelmingly on subscription.
var subscriptionMerchants = []string{
	"NETFLIX", "SPOTIFY", "YOUTUBE", "GOOGLE STORAGE", "GOOGLE ONE",
	"AMAZON PRIME", "PRIME VIDEO", "HOTSTAR", "SONYLIV", "ZEE5", "APPLE.COM",
	"APPLE BILL", "ICLOUD", "MICROSOFT", "OFFICE 365", "OFFICE365", "GITHUB",
	"FIGMA", "ADOBE", "NOTION", "ZOOM", "DROPBOX", "CANVA", "OPENAI",
	"ANTHROPIC", "CLAUDE.AI", "CURSOR", "SLACK", "ATLASSIAN", "JIRA",
	"SWIGGY ONE", "BIGBASKET BBSTAR", "URBANCLAP PLUS", "CRED PRIME",
	"PHONEPE PASS", "SPOTIFY AB", "QUILLBOT", "SUBSTACK", "MIRROR AI",
}

// Scheme wording that only reads as recurring when the tokens appear in a
// particular arrangement; plain keyword containment is too loose for these.
var subscriptionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bUPI[-\s]?AUTO(?:PAY| DEBIT)\b`),
	regexp.MustCompile(`\bAUTO[-\s]?RENEW(AL)?\b`),
	regexp.MustCompile(`\bRECURRING\s+PAYMENT\b`),
	regexp.MustCompile(`\bSI\s*/\s*ACH\b`),
	regexp.MustCompile(`\bAUTH\s*MANDATE\b`),
}

// categoryGroups are evaluated in order; the first group with a phrase in
// the record text wins. The income group is gated to CREDIT records by
// Categorize, so it sits last without a separate priority scheme.
var categoryGroups = []Group{
	{Name: "foods", Phrases: []string{"SWIGGY", "ZOMATO", "FOOD", "DINING", "RESTAURANT", "PIZZA", "CAFE", "DOMINOS", "EATS", "BBQ NATION", "KFC", "MCDONALD"}},
	{Name: "fuel", Phrases: []string{"FUEL", "PETROL", "DIESEL", "HPCL", "IOCL", "BPCL", "SHELL", "ESSAR", "FILLING STATION", "AUTOFUEL", "HP PAY"}},
	{Name: "recharge", Phrases: []string{"RECHARGE", "FASTAG", "MOBILE", "PREPAID", "POSTPAID", "DTH", "BROADBAND", "AIRTEL", "JIO", "VODAFONE", "VI ", "BSNL", "DATA CARD"}},
	{Name: "mutual_fund", Phrases: []string{"MUTUAL FUND", "SIP", "SYSTEMATIC INVEST", "AMC", "CAMS", "KFINTECH", "MFU", "GROWW", "ZERODHA COIN", "CLEARFUNDS", "INVESTMENT SERVICES"}},
	{Name: "credit_bills", Phrases: []string{"CREDIT CARD PAYMENT", "CARD PAYMENT", "CC PAYMENT", "HDFC BANK CARD", "ICICI CREDIT CARD", "BILLDESK", "STATEMENT PAYMENT", "CARDSETTLEMENT", "HDFCBANKCC", "PAYTM CREDIT CARD"}},
	{Name: "income", Phrases: []string{"SALARY", "PAYROLL", "NEFT CR", "REFUND", "INTEREST", "DIVIDEND", "REIMBURSEMENT", "CREDITED BY", "CREDIT FROM", "PAYMENT RECEIVED"}},
}

// Classifier annotates transactions with a spending category and a
// subscription flag. Build once and share; it is immutable after
// construction.
type Classifier struct {
	spending *Matcher // category groups minus income
	all      *Matcher // category groups including income
	keywords *Matcher
	merchant *Matcher
}

func NewClassifier() *Classifier {
	return &Classifier{
		spending: NewMatcher(categoryGroups[:len(categoryGroups)-1]),
		all:      NewMatcher(categoryGroups),
		keywords: NewMatcher([]Group{{Name: "keyword", Phrases: subscriptionKeywords}}),
		merchant: NewMatcher([]Group{{Name: "merchant", Phrases: subscriptionMerchants}}),
	}
}

// Categorize returns the spending category for a transaction. Income is
// only ever assigned to CREDIT records; an unmatched CREDIT defaults to
// income and everything else to others.
func (c *Classifier) Categorize(t models.Transaction) string {
	text := detectionText(t)
	if t.Type == models.TypeCredit {
		if group, _, ok := c.all.Match(text); ok {
			return group
		}
		return "income"
	}
	if group, _, ok := c.spending.Match(text); ok {
		return group
	}
	return "others"
}

// DetectSubscription reports whether a transaction looks like a recurring
// charge, and why. Detection legs run cheapest-and-most-reliable first:
// keywords, then arrangement patterns, exact merchants, near-miss merchant
// spellings, and finally shorthand heuristics.
func (c *Classifier) DetectSubscription(t models.Transaction) (bool, string) {
	text := detectionText(t)

	if _, phrase, ok := c.keywords.Match(text); ok {
		return true, "keyword:" + phrase
	}
	for _, re := range subscriptionPatterns {
		if m := re.FindString(text); m != "" {
			return true, "pattern:" + m
		}
	}
	if _, phrase, ok := c.merchant.Match(text); ok {
		return true, "merchant:" + phrase
	}
	if merchant, ok := fuzzyMerchant(text); ok {
		return true, "fuzzy:" + merchant
	}

	if strings.Contains(text, "AUTO") && (strings.Contains(text, "PAY") || strings.Contains(text, "DEBIT")) {
		return true, "heuristic:autopay"
	}
	if strings.Contains(text, "SI/") || strings.Contains(text, "STANDING INST") {
		return true, "heuristic:standing_instruction"
	}
	if strings.Contains(text, "SUB ") || strings.Contains(text, "SUB-") {
		return true, "heuristic:subscription_shorthand"
	}
	return false, ""
}

// fuzzyMerchant catches near-miss merchant spellings ("NETFLX") that exact
// containment misses. Only single-word merchants long enough to be
// distinctive are compared, with one edit of slack.
func fuzzyMerchant(text string) (string, bool) {
	tokens := strings.Fields(text)
	for _, merchant := range subscriptionMerchants {
		if strings.ContainsRune(merchant, ' ') || len(merchant) < 6 {
			continue
		}
		for _, tok := range tokens {
			if len(tok) < len(merchant)-1 || len(tok) > len(merchant)+1 {
				continue
			}
			if fuzzy.LevenshteinDistance(merchant, tok) <= 1 {
				return merchant, true
			}
		}
	}
	return "", false
}

// detectionText joins the fields that can carry merchant or scheme wording
// and uppercases the result for matching.
func detectionText(t models.Transaction) string {
	joined := strings.Join([]string{t.Description, t.Narration, t.RawLine, t.To, t.PaidBy}, " ")
	return strings.ToUpper(strings.Join(strings.Fields(joined), " "))
}
