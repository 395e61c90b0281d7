package ports

import "time"

// Item is anything with a plain-text view suitable for anagram comparison.
// Items are immutable once they enter the pipeline.
type Item interface {
	Text() string
}

// Line is a bare text item (one line of input).
type Line string

// Text returns the line itself.
func (l Line) Text() string { return string(l) }

// Tweet is a post in the activity-stream JSON format delivered by the
// streaming firehose. Only the fields the pipeline reads are modelled.
type Tweet struct {
	Body       string    `json:"body"`
	Lang       string    `json:"twitter_lang"`
	Link       string    `json:"link"`
	PostedTime time.Time `json:"postedTime"`
	Actor      Actor     `json:"actor"`
	Entities   Entities  `json:"twitter_entities"`
}

// Text returns the tweet body.
func (t *Tweet) Text() string { return t.Body }

// Actor is the posting account.
type Actor struct {
	ID                string `json:"id"`
	Link              string `json:"link"`
	DisplayName       string `json:"displayName"`
	Image             string `json:"image"`
	PreferredUsername string `json:"preferredUsername"`
	Verified          bool   `json:"verified"`
	FollowersCount    uint64 `json:"followersCount"`
}

// Entities holds the structured parts extracted from the tweet body.
type Entities struct {
	Hashtags     []Hashtag     `json:"hashtags"`
	URLs         []URL         `json:"urls"`
	UserMentions []UserMention `json:"user_mentions"`
}

// Hashtag is a #tag and its [start, end) rune offsets.
type Hashtag struct {
	Text    string    `json:"text"`
	Indices [2]uint64 `json:"indices"`
}

// URL is a link contained in the body.
type URL struct {
	URL         string    `json:"url"`
	ExpandedURL string    `json:"expanded_url"`
	Indices     [2]uint64 `json:"indices"`
}

// UserMention is an @mention contained in the body.
type UserMention struct {
	ScreenName string    `json:"screen_name"`
	Name       string    `json:"name,omitempty"`
	ID         uint64    `json:"id,omitempty"`
	IDStr      string    `json:"id_str,omitempty"`
	Indices    [2]uint64 `json:"indices"`
}
