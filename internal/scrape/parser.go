package scrape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

// Section grammar: a line holding ★ starts an item section, followed by the
// item name line, a blank spacer line, then the price line.
//
//	AK-47 | Redline (Field-Tested) #12
//	Karambit (Vanilla) #34
//	(売約済み) #56
//	販売価格: 1,000円
var (
	soldMatcher    = regexp.MustCompile(`\(売約済み\) #(\d+)`)
	vanillaMatcher = regexp.MustCompile(`([A-Za-z ]+) \(Vanilla\) #(\d+)`)
	itemMatcher    = regexp.MustCompile(`([A-Za-z ]+) \(([-A-Za-z ]+)\) #(\d+)`)
	priceMatcher   = regexp.MustCompile(`販売価格: ([0-9,]+)円 *`)
)

// parseSections walks the page lines and parses every item section. A
// corrupted section is logged and skipped; the rest of the page still parses.
func (s *Scraper) parseSections(lines []string) []RawRecord {
	var records []RawRecord

	for i := 0; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "★" {
			continue
		}

		if i+3 >= len(lines) {
			s.log.Warn("corrupted item section", logger.String("reason", "section truncated at end of page"))
			continue
		}

		// name line, blank spacer, price line
		record, err := parseSection(lines[i+1], lines[i+3])
		if err != nil {
			s.log.Warn("corrupted item section", logger.Err(err))
			continue
		}
		i += 3

		records = append(records, record)
	}

	return records
}

func parseSection(nameLine, priceLine string) (RawRecord, error) {
	var record RawRecord

	parts := strings.Split(nameLine, " | ")
	switch len(parts) {
	case 1:
		// sold marker or vanilla item
		if caps := soldMatcher.FindStringSubmatch(parts[0]); caps != nil {
			record.OrderID = caps[1]
			record.Sold = true
		} else if caps := vanillaMatcher.FindStringSubmatch(parts[0]); caps != nil {
			record.Name = caps[1]
			record.OrderID = caps[2]
		} else {
			return RawRecord{}, fmt.Errorf("invalid item format: %q", nameLine)
		}
	case 2:
		caps := itemMatcher.FindStringSubmatch(parts[1])
		if caps == nil {
			return RawRecord{}, fmt.Errorf("invalid item format: %q", nameLine)
		}
		record.Name = parts[0]
		record.Kind = caps[1]
		record.Exterior = caps[2]
		record.OrderID = caps[3]
	default:
		return RawRecord{}, fmt.Errorf("invalid item format: %q", nameLine)
	}

	caps := priceMatcher.FindStringSubmatch(priceLine)
	if caps == nil {
		return RawRecord{}, fmt.Errorf("invalid price format: %q", priceLine)
	}
	record.Price = strings.ReplaceAll(caps[1], ",", "")

	record.Name = strings.TrimSpace(record.Name)
	record.Kind = strings.TrimSpace(record.Kind)

	return record, nil
}
