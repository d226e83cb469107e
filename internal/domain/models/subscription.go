package models

import (
	"strings"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelFCM     Channel = "fcm"
	ChannelWebPush Channel = "webpush"
)

func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelFCM, ChannelWebPush:
		return Channel(s), true
	}
	return "", false
}

// Filter narrows which listings a subscription is notified about.
// The zero value matches everything.
type Filter struct {
	MaxPrice     *int     `json:"max_price,omitempty"`
	NameContains string   `json:"name_contains,omitempty"`
	Kinds        []string `json:"kinds,omitempty"`
}

func (f Filter) Matches(item Item) bool {
	if f.MaxPrice != nil && item.Price > *f.MaxPrice {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if len(f.Kinds) > 0 {
		if item.Kind == nil {
			return false
		}
		found := false
		for _, kind := range f.Kinds {
			if strings.EqualFold(kind, *item.Kind) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Subscription binds a delivery endpoint on one channel to a filter.
// Endpoint is an FCM registration token for ChannelFCM and a serialized
// Web Push subscription (endpoint plus keys) for ChannelWebPush.
type Subscription struct {
	UUID     uuid.UUID `json:"uuid"`
	Channel  Channel   `json:"channel"`
	Endpoint string    `json:"endpoint"`
	Filter   Filter    `json:"filter"`
}
