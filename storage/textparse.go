package storage

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	labeledAmountPattern = regexp.MustCompile(`(?i)^(sub\s?total|tax|tip|gratuity|total)\b.*?\$?([\d,]+\.\d{2})\s*$`)
	linePricePattern     = regexp.MustCompile(`^(.+?)\s+(?:(\d+)\s+)?\$?([\d,]+\.\d{2})\s*$`)

	skipPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(amount|balance|change|cash|card|visa|mastercard|receipt|thank|visit|date|time|server|table|order|guest)`),
		regexp.MustCompile(`(?i)^\s*\$?[\d,]+\.?\d{0,2}\s*$`), // just a price
		regexp.MustCompile(`^[\s\-=*_]+$`),                    // separator lines
	}
)

// ParseReceiptText is the last-resort extractor: plain regex heuristics over
// OCR text when neither Document AI nor Gemini produced a usable parse.
// Receipt formats vary widely, so this trades recall for simplicity.
func ParseReceiptText(ocrText string) *ParsedReceipt {
	result := &ParsedReceipt{Text: ocrText}

	for _, line := range strings.Split(ocrText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := labeledAmountPattern.FindStringSubmatch(line); len(m) == 3 {
			amount, err := parsePrice(m[2])
			if err != nil {
				continue
			}
			switch strings.ToLower(strings.ReplaceAll(m[1], " ", "")) {
			case "subtotal":
				result.Subtotal = &amount
			case "tax":
				result.Tax = &amount
			case "tip", "gratuity":
				result.Tip = &amount
			case "total":
				result.Total = &amount
			}
			continue
		}

		if shouldSkipLine(line) {
			continue
		}

		if result.Merchant == nil && len(result.Items) == 0 && !strings.ContainsAny(line, "0123456789") {
			merchant := line
			result.Merchant = &merchant
			continue
		}

		m := linePricePattern.FindStringSubmatch(line)
		if len(m) != 4 {
			continue
		}

		description := strings.TrimSpace(m[1])
		quantity := 1
		if m[2] != "" {
			if q, err := strconv.Atoi(m[2]); err == nil && q > 0 {
				quantity = q
			}
		}
		amount, err := parsePrice(m[3])
		if err != nil || amount <= 0 || description == "" {
			continue
		}

		result.Items = append(result.Items, ParsedItem{
			Description: description,
			Quantity:    quantity,
			Amount:      amount,
			UnitPrice:   amount / float64(quantity),
		})
	}

	return result
}

func shouldSkipLine(line string) bool {
	for _, pattern := range skipPatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

func parsePrice(text string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
}
