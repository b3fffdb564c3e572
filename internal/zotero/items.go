package zotero

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/reftools/zotero-mcp/internal/logging"
)

// ItemsService handles communication with the item-related endpoints of
// the Zotero Web API.
type ItemsService service

// ItemListOptions specifies the optional parameters for item listing.
type ItemListOptions struct {
	// Limit caps the number of results per page (API maximum: 100).
	Limit int `url:"limit,omitempty"`

	// Start is the zero-based index of the first result.
	Start int `url:"start,omitempty"`

	// Sort selects the field to sort by, e.g. "dateAdded" or "title".
	Sort string `url:"sort,omitempty"`

	// Direction is "asc" or "desc".
	Direction string `url:"direction,omitempty"`
}

// maxPageSize is the largest page the API serves per request; the
// exhaustive fetch paginates with this size.
const maxPageSize = 100

// Top lists top-level items (no attachments or child notes) in the
// library. A nil opts fetches the API's default page.
func (s *ItemsService) Top(ctx context.Context, opts *ItemListOptions) ([]*Item, *Response, error) {
	u := s.client.prefix() + "/items/top"
	if opts != nil {
		var err error
		u, err = addOptions(u, opts)
		if err != nil {
			return nil, nil, err
		}
	}

	req, err := s.client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}

	var items []*Item
	resp, err := s.client.Do(ctx, req, &items)
	if err != nil {
		return nil, resp, err
	}

	return items, resp, nil
}

// AllTop fetches every top-level item in the library, following the
// Link rel="next" pagination until exhausted. Order follows the API's
// page order.
func (s *ItemsService) AllTop(ctx context.Context) ([]*Item, error) {
	u, err := addOptions(s.client.prefix()+"/items/top", &ItemListOptions{Limit: maxPageSize})
	if err != nil {
		return nil, err
	}

	var all []*Item
	pages := 0
	for u != "" {
		req, err := s.client.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		var page []*Item
		resp, err := s.client.Do(ctx, req, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch items page: %w", err)
		}

		all = append(all, page...)
		pages++
		u = resp.NextURL
	}

	s.client.logger.Debug("fetched all top-level items",
		logging.Operation("list"), "pages", pages, "items", len(all))

	return all, nil
}

// Get fetches a single item by key.
func (s *ItemsService) Get(ctx context.Context, key string) (*Item, *Response, error) {
	if key == "" {
		return nil, nil, fmt.Errorf("item key cannot be empty")
	}

	u := s.client.prefix() + "/items/" + key
	req, err := s.client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}

	item := new(Item)
	resp, err := s.client.Do(ctx, req, item)
	if err != nil {
		return nil, resp, err
	}

	return item, resp, nil
}

// Delete removes an item. The API requires the item's current version in
// the If-Unmodified-Since-Version header; pass version <= 0 to have it
// resolved with a preliminary Get.
func (s *ItemsService) Delete(ctx context.Context, key string, version int) (*Response, error) {
	if key == "" {
		return nil, fmt.Errorf("item key cannot be empty")
	}

	if version <= 0 {
		item, _, err := s.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve version for item %s: %w", key, err)
		}
		version = item.Version
	}

	u := s.client.prefix() + "/items/" + key
	req, err := s.client.NewRequest(http.MethodDelete, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("If-Unmodified-Since-Version", strconv.Itoa(version))

	resp, err := s.client.Do(ctx, req, nil)
	if err != nil {
		s.client.logger.Debug("item deletion failed",
			logging.Operation("delete"), logging.ItemKey(key),
			logging.Status(logging.StatusError), logging.Err(err))
		return resp, err
	}

	s.client.logger.Debug("item deleted",
		logging.Operation("delete"), logging.ItemKey(key),
		logging.Status(logging.StatusSuccess))
	return resp, nil
}
