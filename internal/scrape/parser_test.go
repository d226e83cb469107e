package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

func TestParseSection(t *testing.T) {
	tCases := []struct {
		name      string
		nameLine  string
		priceLine string
		expected  RawRecord
	}{
		{
			name:      "normal_item",
			nameLine:  "AK-47 Redline | Rifle (Field-Tested) #12",
			priceLine: "販売価格: 1,000円",
			expected:  RawRecord{OrderID: "12", Name: "AK-47 Redline", Kind: "Rifle", Exterior: "Field-Tested", Price: "1000"},
		},
		{
			name:      "vanilla_item",
			nameLine:  "Karambit (Vanilla) #34",
			priceLine: "販売価格: 50,000円",
			expected:  RawRecord{OrderID: "34", Name: "Karambit", Price: "50000"},
		},
		{
			name:      "sold_marker",
			nameLine:  "(売約済み) #56",
			priceLine: "販売価格: 2,500円",
			expected:  RawRecord{OrderID: "56", Price: "2500", Sold: true},
		},
		{
			name:      "stattrak_kept_in_name",
			nameLine:  "StatTrak AWP Asiimov | Sniper Rifle (Battle-Scarred) #78",
			priceLine: "販売価格: 800円",
			expected:  RawRecord{OrderID: "78", Name: "StatTrak AWP Asiimov", Kind: "Sniper Rifle", Exterior: "Battle-Scarred", Price: "800"},
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			record, err := parseSection(tCase.nameLine, tCase.priceLine)
			require.NoError(t, err)
			require.Equal(t, tCase.expected, record)
		})
	}
}

func TestParseSectionError(t *testing.T) {
	tCases := []struct {
		name      string
		nameLine  string
		priceLine string
	}{
		{
			name:      "garbage_name_line",
			nameLine:  "not an item at all",
			priceLine: "販売価格: 1,000円",
		},
		{
			name:      "too_many_separators",
			nameLine:  "A | B | C #1",
			priceLine: "販売価格: 1,000円",
		},
		{
			name:      "bad_price_line",
			nameLine:  "AK-47 Redline | Rifle (Field-Tested) #12",
			priceLine: "no price here",
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			_, err := parseSection(tCase.nameLine, tCase.priceLine)
			require.Error(t, err)
		})
	}
}

func TestParseSectionsSkipsCorrupted(t *testing.T) {
	s := New(logger.NewSlogLogger(logger.EnvLocal), "http://example.com", "test")

	lines := []string{
		"★",
		"AK-47 Redline | Rifle (Field-Tested) #12",
		"",
		"販売価格: 1,000円",
		"★",
		"this section is corrupted",
		"",
		"販売価格: 500円",
		"★",
		"Karambit (Vanilla) #34",
		"",
		"販売価格: 50,000円",
		"★", // truncated at end of page
	}

	records := s.parseSections(lines)

	require.Len(t, records, 2)
	require.Equal(t, "12", records[0].OrderID)
	require.Equal(t, "34", records[1].OrderID)
}
