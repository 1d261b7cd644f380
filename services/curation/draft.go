package curation

import (
	"github.com/safetube/web-ui/services/youtube"
)

// MaxPreviews caps how many previews a draft accumulates across pages.
const MaxPreviews = 100

// Draft is the selection set of a batch import between preview and commit.
type Draft struct {
	URL           string                  `json:"url"`
	Kind          youtube.Kind            `json:"kind"`
	SourceID      string                  `json:"source_id"`
	Handle        bool                    `json:"handle,omitempty"`
	Previews      []*youtube.VideoPreview `json:"previews"`
	NextPageToken string                  `json:"next_page_token,omitempty"`
	TotalResults  *int64                  `json:"total_results,omitempty"`
	Selected      map[string]bool         `json:"selected"`
}

func NewDraft(rawURL string, t *youtube.Target) *Draft {
	return &Draft{
		URL:      rawURL,
		Kind:     t.Kind,
		SourceID: t.ID,
		Handle:   t.Handle,
		Previews: []*youtube.VideoPreview{},
		Selected: map[string]bool{},
	}
}

func (d *Draft) Target() *youtube.Target {
	return &youtube.Target{
		Kind:   d.Kind,
		ID:     d.SourceID,
		Handle: d.Handle,
	}
}

// Append adds a fetched page. Previews already in the draft are skipped and
// nothing is added past MaxPreviews.
func (d *Draft) Append(b *youtube.Batch) {
	for _, v := range b.Videos {
		if len(d.Previews) >= MaxPreviews {
			break
		}
		if d.has(v.VideoID) {
			continue
		}
		d.Previews = append(d.Previews, v)
	}
	d.NextPageToken = b.NextPageToken
	if b.TotalResults != nil {
		d.TotalResults = b.TotalResults
	}
}

func (d *Draft) CanLoadMore() bool {
	return len(d.Previews) < MaxPreviews && d.NextPageToken != ""
}

// Total is the size of the source as reported by the provider, 0 when
// unknown.
func (d *Draft) Total() int {
	if d.TotalResults == nil {
		return 0
	}
	return int(*d.TotalResults)
}

func (d *Draft) Full() bool {
	return len(d.Previews) >= MaxPreviews
}

func (d *Draft) has(id string) bool {
	for _, v := range d.Previews {
		if v.VideoID == id {
			return true
		}
	}
	return false
}

func (d *Draft) Toggle(id string) {
	if !d.has(id) {
		return
	}
	if d.Selected[id] {
		delete(d.Selected, id)
	} else {
		d.Selected[id] = true
	}
}

// SelectAll selects every preview, or clears the selection when everything
// is already selected.
func (d *Draft) SelectAll() {
	if d.AllSelected() {
		d.SelectNone()
		return
	}
	for _, v := range d.Previews {
		d.Selected[v.VideoID] = true
	}
}

func (d *Draft) SelectNone() {
	d.Selected = map[string]bool{}
}

// SetSelection replaces the selection with ids, ignoring unknown ones.
func (d *Draft) SetSelection(ids []string) {
	d.SelectNone()
	for _, id := range ids {
		if d.has(id) {
			d.Selected[id] = true
		}
	}
}

func (d *Draft) AllSelected() bool {
	return len(d.Previews) > 0 && d.SelectedCount() == len(d.Previews)
}

func (d *Draft) IsSelected(id string) bool {
	return d.Selected[id]
}

func (d *Draft) SelectedCount() int {
	n := 0
	for _, v := range d.Previews {
		if d.Selected[v.VideoID] {
			n++
		}
	}
	return n
}

// SelectedPreviews returns the selected previews in display order.
func (d *Draft) SelectedPreviews() []*youtube.VideoPreview {
	var res []*youtube.VideoPreview
	for _, v := range d.Previews {
		if d.Selected[v.VideoID] {
			res = append(res, v)
		}
	}
	return res
}
