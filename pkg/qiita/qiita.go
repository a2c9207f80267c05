// Package qiita holds the domain models exchanged with the Qiita v2 REST API
// and broadcast through the application hub. All JSON field names follow
// the API's snake_case convention.
package qiita

import "time"

// BaseURL is the base service address of the Qiita v2 REST API.
const BaseURL = "https://qiita.com/api/v2/"

// ServiceName identifies the API in errors and logs.
const ServiceName = "qiita"

// Tag is a tag attached to an item.
type Tag struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

// Item is an article posted to Qiita.
type Item struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Body          string    `json:"body,omitempty"`
	RenderedBody  string    `json:"rendered_body,omitempty"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	Tags          []Tag     `json:"tags"`
	User          User      `json:"user"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FavableItem is an item together with the local favorite state.
type FavableItem struct {
	Item  Item `json:"item"`
	Faved bool `json:"faved"`
}

// Favable wraps items with their favorite state looked up in faved.
func Favable(items []Item, faved map[string]bool) []FavableItem {
	out := make([]FavableItem, 0, len(items))
	for _, it := range items {
		out = append(out, FavableItem{Item: it, Faved: faved[it.ID]})
	}
	return out
}

// User is a Qiita user profile.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ProfileImageURL string `json:"profile_image_url"`
	Location        string `json:"location"`
	Organization    string `json:"organization"`
	WebsiteURL      string `json:"website_url"`
	FolloweesCount  int    `json:"followees_count"`
	FollowersCount  int    `json:"followers_count"`
	ItemsCount      int    `json:"items_count"`
}

// FavEvent reports that the favorite state of an item was toggled.
type FavEvent struct {
	ItemID string `json:"item_id"`
	Faved  bool   `json:"faved"`
}

// DummyUser returns the placeholder profile shown before the
// authenticated user has been fetched.
func DummyUser() User {
	return User{
		ID:          "guest",
		Name:        "Guest",
		Description: "Not signed in",
	}
}
