package hub

import "github.com/agentstation/qiitabrowser/pkg/qiita"

// ToggleFavorite publishes a favorite toggle for item and updates the
// favorite list and the faved flag in the item list to match. It returns
// the event that was published. Concurrent toggles are applied one at a
// time, each on top of the lists the previous one left.
func (h *Hub) ToggleFavorite(item qiita.Item, faved bool) qiita.FavEvent {
	h.toggleMu.Lock()
	defer h.toggleMu.Unlock()

	ev := qiita.FavEvent{ItemID: item.ID, Faved: faved}

	h.Favorites().Update(func(favs []qiita.FavableItem) ([]qiita.FavableItem, bool) {
		next := make([]qiita.FavableItem, 0, len(favs)+1)
		if faved {
			next = append(next, qiita.FavableItem{Item: item, Faved: true})
		}
		for _, f := range favs {
			if f.Item.ID != item.ID {
				next = append(next, f)
			}
		}
		return next, true
	})

	h.Items().Update(func(items []qiita.FavableItem) ([]qiita.FavableItem, bool) {
		updated := make([]qiita.FavableItem, len(items))
		changed := false
		for i, it := range items {
			updated[i] = it
			if it.Item.ID == item.ID && it.Faved != faved {
				updated[i].Faved = faved
				changed = true
			}
		}
		return updated, changed
	})

	h.FavEvents().Publish(ev)
	return ev
}

// FavedIDs returns the ids of the current favorites.
func (h *Hub) FavedIDs() map[string]bool {
	favs := h.Favorites().Value()
	ids := make(map[string]bool, len(favs))
	for _, f := range favs {
		ids[f.Item.ID] = true
	}
	return ids
}
