package jellyfin

// ItemsResponse represents a paginated list of items from Jellyfin.
type ItemsResponse struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
	StartIndex       int    `json:"StartIndex"`
}

// Item represents a media item from Jellyfin (movie or series).
type Item struct {
	ID             string            `json:"Id"`
	Name           string            `json:"Name"`
	Overview       string            `json:"Overview,omitempty"`
	Type           string            `json:"Type"`
	ProductionYear int               `json:"ProductionYear,omitempty"`
	Genres         []string          `json:"Genres,omitempty"`
	ProviderIds    map[string]string `json:"ProviderIds,omitempty"`
	UserData       *UserData         `json:"UserData,omitempty"`
}

// UserData contains user-specific data for an item.
type UserData struct {
	UserRating     float64 `json:"UserRating,omitempty"`
	PlayCount      int     `json:"PlayCount"`
	Played         bool    `json:"Played"`
	IsFavorite     bool    `json:"IsFavorite"`
	LastPlayedDate string  `json:"LastPlayedDate,omitempty"`
}

// SystemInfo represents the public system info from Jellyfin.
type SystemInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
	ID         string `json:"Id"`
}
