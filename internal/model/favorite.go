package model

// FavoriteEntry is one security on the watchlist.
type FavoriteEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
