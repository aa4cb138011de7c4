package plex

// APIResponse is the top-level envelope for Plex API responses.
type APIResponse struct {
	MediaContainer MediaContainer `json:"MediaContainer"`
}

// MediaContainer is the root container for Plex API responses.
type MediaContainer struct {
	Size      int         `json:"size"`
	TotalSize int         `json:"totalSize,omitempty"`
	Offset    int         `json:"offset,omitempty"`
	Directory []Directory `json:"Directory,omitempty"`
	Metadata  []Metadata  `json:"Metadata,omitempty"`
}

// Directory represents a library section.
type Directory struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Metadata represents a media item (movie, show, or history entry).
type Metadata struct {
	RatingKey            string   `json:"ratingKey"`
	Key                  string   `json:"key"`
	ParentRatingKey      string   `json:"parentRatingKey,omitempty"`
	GrandparentRatingKey string   `json:"grandparentRatingKey,omitempty"`
	Type                 string   `json:"type"`
	Title                string   `json:"title"`
	GrandparentTitle     string   `json:"grandparentTitle,omitempty"`
	ParentTitle          string   `json:"parentTitle,omitempty"`
	Summary              string   `json:"summary,omitempty"`
	UserRating           float64  `json:"userRating,omitempty"`
	RatingAt             int64    `json:"ratingAt,omitempty"`
	AddedAt              int64    `json:"addedAt,omitempty"`
	ViewedAt             int64    `json:"viewedAt,omitempty"`
	Year                 int      `json:"year,omitempty"`
	Guid                 []GUID   `json:"Guid,omitempty"`
	Genre                []Tag    `json:"Genre,omitempty"`
}

// GUID is an external identifier reference like "tmdb://27205".
type GUID struct {
	ID string `json:"id"`
}

// Tag is a name-only tag entry (genres, countries, directors).
type Tag struct {
	Tag string `json:"tag"`
}
