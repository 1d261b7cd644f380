package library

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/safetube/web-ui/models"
)

type SortOption struct {
	SortType models.SortType
	Title    string
	Value    string
	Selected bool
}

type Sort []SortOption

var sortValues = map[models.SortType]string{
	models.SortTypeRecentlyAdded: "recent",
	models.SortTypeTitle:         "title",
}

func NewSort(selected models.SortType, sortTypes ...models.SortType) Sort {
	var s Sort
	for _, st := range sortTypes {
		s = append(s, SortOption{
			SortType: st,
			Title:    st.String(),
			Value:    sortValues[st],
			Selected: st == selected,
		})
	}
	return s
}

func parseSort(v string) models.SortType {
	if v == sortValues[models.SortTypeTitle] {
		return models.SortTypeTitle
	}
	return models.SortTypeRecentlyAdded
}

// sortVideos orders vs in place. Recently added keeps the store order,
// newest first.
func sortVideos(vs []*models.Video, st models.SortType) {
	switch st {
	case models.SortTypeTitle:
		cl := collate.New(language.English, collate.Loose, collate.Numeric)
		sort.SliceStable(vs, func(i, j int) bool {
			return cl.CompareString(vs[i].Title, vs[j].Title) < 0
		})
	default:
		sort.SliceStable(vs, func(i, j int) bool {
			return vs[i].CreatedAt.After(vs[j].CreatedAt)
		})
	}
}
