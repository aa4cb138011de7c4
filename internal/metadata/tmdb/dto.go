package tmdb

// Result is a single entry from a TMDB search or recommendations response.
// Movies carry Title/ReleaseDate, series carry Name/FirstAirDate.
type Result struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	VoteAverage      float64 `json:"vote_average"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	OriginalLanguage string  `json:"original_language"`
}

// DisplayTitle returns whichever of the movie or series title fields is set.
func (r *Result) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// AirDate returns the release date for movies or the first air date for series.
func (r *Result) AirDate() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

type resultPage struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Genre is a TMDB genre reference.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Country is a TMDB production country reference.
type Country struct {
	Code string `json:"iso_3166_1"`
	Name string `json:"name"`
}

// Details is the full record for a movie or series.
type Details struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title"`
	Name                string    `json:"name"`
	Overview            string    `json:"overview"`
	PosterPath          string    `json:"poster_path"`
	VoteAverage         float64   `json:"vote_average"`
	ReleaseDate         string    `json:"release_date"`
	FirstAirDate        string    `json:"first_air_date"`
	OriginalLanguage    string    `json:"original_language"`
	Genres              []Genre   `json:"genres"`
	ProductionCountries []Country `json:"production_countries"`
}

// DisplayTitle returns whichever of the movie or series title fields is set.
func (d *Details) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// GenreNames returns the genre names in catalog order.
func (d *Details) GenreNames() []string {
	if len(d.Genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// Country returns the first production country name, or empty when unknown.
func (d *Details) Country() string {
	if len(d.ProductionCountries) == 0 {
		return ""
	}
	return d.ProductionCountries[0].Name
}
