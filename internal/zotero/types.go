package zotero

import "encoding/json"

// Item is a bibliographic record in a Zotero library, identified by a
// stable, library-assigned key.
type Item struct {
	Key     string    `json:"key"`
	Version int       `json:"version"`
	Library *Library  `json:"library,omitempty"`
	Meta    *ItemMeta `json:"meta,omitempty"`
	Data    ItemData  `json:"data"`

	// raw holds the item exactly as returned by the API, so callers can
	// surface fields this package does not model.
	raw json.RawMessage
}

// UnmarshalJSON decodes the item and retains the raw API representation.
func (i *Item) UnmarshalJSON(b []byte) error {
	type alias Item
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*i = Item(a)
	i.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Raw returns the item exactly as returned by the API, or nil when the
// item was not produced by decoding an API response.
func (i *Item) Raw() json.RawMessage {
	return i.raw
}

// Title returns the item's title, which may be empty for items such as
// attachments and notes.
func (i *Item) Title() string {
	return i.Data.Title
}

// Library identifies the library an item belongs to.
type Library struct {
	Type string `json:"type,omitempty"`
	ID   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ItemMeta carries API-computed metadata about an item.
type ItemMeta struct {
	CreatorSummary string `json:"creatorSummary,omitempty"`
	ParsedDate     string `json:"parsedDate,omitempty"`
	NumChildren    int    `json:"numChildren,omitempty"`
}

// ItemData is the editable portion of an item. Only the fields this
// server inspects are modeled; the full record is available via Item.Raw.
type ItemData struct {
	Key          string `json:"key,omitempty"`
	Version      int    `json:"version,omitempty"`
	ItemType     string `json:"itemType,omitempty"`
	Title        string `json:"title,omitempty"`
	DateAdded    string `json:"dateAdded,omitempty"`
	DateModified string `json:"dateModified,omitempty"`
	URL          string `json:"url,omitempty"`
	AbstractNote string `json:"abstractNote,omitempty"`
}
