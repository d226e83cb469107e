// Package normalizer converts raw page records into canonical items,
// rejecting malformed records one by one without failing the snapshot.
package normalizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/internal/scrape"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

const stattrakPrefix = "StatTrak "

var (
	errMissingOrderID = errors.New("order_id is missing or not numeric")
	errEmptyName      = errors.New("name is empty")
	errInvalidPrice   = errors.New("price is missing or not numeric")
	errKindExterior   = errors.New("kind and exterior must be both present or both absent")
)

type Normalizer struct {
	log logger.Logger
}

func New(log logger.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Normalize maps raw records onto canonical items. Sold markers carry no item
// attributes, so they are resolved against the previous snapshot; a sold
// marker for an unknown order id is dropped, as there is nothing to flag.
// Invalid records are logged and skipped.
func (n *Normalizer) Normalize(records []scrape.RawRecord, prev models.Snapshot) []models.Item {
	items := make([]models.Item, 0, len(records))

	for _, record := range records {
		item, err := n.normalizeOne(record, prev)
		if err != nil {
			n.log.Warn("skipping malformed record",
				logger.String("order_id", record.OrderID),
				logger.Err(err),
			)
			continue
		}
		if item == nil {
			continue
		}
		items = append(items, *item)
	}

	return items
}

func (n *Normalizer) normalizeOne(record scrape.RawRecord, prev models.Snapshot) (*models.Item, error) {
	orderID, err := strconv.Atoi(record.OrderID)
	if err != nil || record.OrderID == "" {
		return nil, errMissingOrderID
	}

	price, err := strconv.Atoi(record.Price)
	if err != nil || price < 0 {
		return nil, errInvalidPrice
	}

	if record.Sold {
		known, ok := prev[orderID]
		if !ok {
			// already sold and never tracked, nothing to report
			n.log.Debug("untracked sold listing ignored", logger.Int("order_id", orderID))
			return nil, nil
		}
		known.HasSold = true
		known.Price = price
		return &known, nil
	}

	name := strings.TrimSpace(record.Name)
	if name == "" {
		return nil, errEmptyName
	}

	isStattrak := false
	if strings.HasPrefix(name, stattrakPrefix) {
		name = strings.TrimSpace(strings.TrimPrefix(name, stattrakPrefix))
		isStattrak = true
	}

	if (record.Kind == "") != (record.Exterior == "") {
		return nil, errKindExterior
	}

	item := models.Item{
		OrderID:    orderID,
		Name:       name,
		Price:      price,
		IsStattrak: isStattrak,
	}

	if record.Kind != "" {
		exterior, err := models.ParseExterior(record.Exterior)
		if err != nil {
			return nil, fmt.Errorf("invalid exterior: %w", err)
		}
		kind := record.Kind
		item.Kind = &kind
		item.Exterior = &exterior
	}

	return &item, nil
}
