package rest

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentstation/qiitabrowser/pkg/constants"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// Items lists public items, newest first. Page numbers start at 1.
func (c *Client) Items(page, perPage int) *Call[[]qiita.Item] {
	return Get[[]qiita.Item](c, "items", pageQuery(page, perPage))
}

// Item fetches a single item.
func (c *Client) Item(id string) *Call[qiita.Item] {
	return Get[qiita.Item](c, "items/"+url.PathEscape(id), nil)
}

// AuthenticatedUser fetches the profile of the token owner.
func (c *Client) AuthenticatedUser() *Call[qiita.User] {
	return Get[qiita.User](c, "authenticated_user", nil)
}

// UserStocks lists the items a user has stocked.
func (c *Client) UserStocks(userID string, page, perPage int) *Call[[]qiita.Item] {
	return Get[[]qiita.Item](c, "users/"+url.PathEscape(userID)+"/stocks", pageQuery(page, perPage))
}

// Stock stocks an item for the token owner.
func (c *Client) Stock(itemID string) *Call[struct{}] {
	return Send[struct{}](c, http.MethodPut, "items/"+url.PathEscape(itemID)+"/stock", nil)
}

// Unstock removes a stocked item for the token owner.
func (c *Client) Unstock(itemID string) *Call[struct{}] {
	return Send[struct{}](c, http.MethodDelete, "items/"+url.PathEscape(itemID)+"/stock", nil)
}

func pageQuery(page, perPage int) url.Values {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = constants.DefaultPerPage
	}
	if perPage > constants.MaxPerPage {
		perPage = constants.MaxPerPage
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}
