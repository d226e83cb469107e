package register

import (
	"encoding/json"
	"errors"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
)

var (
	errInvalidChannel  = errors.New("channel must be fcm or webpush")
	errEmptyEndpoint   = errors.New("endpoint can't be empty")
	errInvalidEndpoint = errors.New("webpush endpoint must be a serialized push subscription")
	errInvalidMaxPrice = errors.New("max_price can't be negative")
	errEmptyKind       = errors.New("kinds can't contain empty values")
)

type RegisterRequest struct {
	Channel  string        `json:"channel"`
	Endpoint string        `json:"endpoint"`
	Filter   FilterRequest `json:"filter"`
}

type FilterRequest struct {
	MaxPrice     *int     `json:"max_price,omitempty"`
	NameContains string   `json:"name_contains,omitempty"`
	Kinds        []string `json:"kinds,omitempty"`
}

func (req *RegisterRequest) validate() error {
	channel, ok := models.ParseChannel(req.Channel)
	if !ok {
		return errInvalidChannel
	}

	if req.Endpoint == "" {
		return errEmptyEndpoint
	}

	if channel == models.ChannelWebPush && !json.Valid([]byte(req.Endpoint)) {
		return errInvalidEndpoint
	}

	if req.Filter.MaxPrice != nil && *req.Filter.MaxPrice < 0 {
		return errInvalidMaxPrice
	}

	for _, kind := range req.Filter.Kinds {
		if kind == "" {
			return errEmptyKind
		}
	}

	return nil
}

func (req *RegisterRequest) toDTO() models.Subscription {
	return models.Subscription{
		Channel:  models.Channel(req.Channel),
		Endpoint: req.Endpoint,
		Filter: models.Filter{
			MaxPrice:     req.Filter.MaxPrice,
			NameContains: req.Filter.NameContains,
			Kinds:        req.Filter.Kinds,
		},
	}
}
