package tmdb

// SearchResult is one entry of a TV search response
type SearchResult struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// SeasonSummary is the per-season stub inside show details
type SeasonSummary struct {
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
}

// ShowDetails is the response of /tv/{id}
type ShowDetails struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Overview   string          `json:"overview"`
	PosterPath string          `json:"poster_path"`
	Status     string          `json:"status"`
	Seasons    []SeasonSummary `json:"seasons"`
}

// Releasing reports whether TMDB considers the show to still be producing
// new installments
func (d *ShowDetails) Releasing() bool {
	switch d.Status {
	case "Returning Series", "In Production", "Planned", "Pilot":
		return true
	}
	return false
}

// EpisodeDetails is one episode inside a season response
type EpisodeDetails struct {
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	AirDate       string `json:"air_date"` // YYYY-MM-DD, empty until announced
	Overview      string `json:"overview"`
	StillPath     string `json:"still_path"`
}

// Season is the response of /tv/{id}/season/{n}
type Season struct {
	SeasonNumber int              `json:"season_number"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview"`
	PosterPath   string           `json:"poster_path"`
	AirDate      string           `json:"air_date"`
	Episodes     []EpisodeDetails `json:"episodes"`
}

// CastMember is one entry of a show credits response
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// Credits is the response of /tv/{id}/credits
type Credits struct {
	Cast []CastMember `json:"cast"`
}

// Person is the response of /person/{id}
type Person struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
}

// CombinedCredit is one entry of a person's combined filmography
type CombinedCredit struct {
	ID        int64  `json:"id"`
	MediaType string `json:"media_type"` // "tv" or "movie"
	Name      string `json:"name"`       // tv
	Title     string `json:"title"`      // movie
	Character string `json:"character"`
}

// DisplayTitle returns the credit's title independent of media type
func (c *CombinedCredit) DisplayTitle() string {
	if c.MediaType == "movie" {
		return c.Title
	}
	return c.Name
}

// CombinedCredits is the response of /person/{id}/combined_credits
type CombinedCredits struct {
	Cast []CombinedCredit `json:"cast"`
}
