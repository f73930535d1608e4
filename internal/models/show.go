package models

import "time"

// Show represents a tracked title. The TMDB id is the canonical identity;
// titles are display-only and never used as keys.
type Show struct {
	ID     uint64 `boltholdKey:"ID"`
	TMDBID int64  `boltholdIndex:"TMDBID"` // unique external catalog id

	Title      string
	PosterPath string
	Type       MediaType // "tv" or "movie"

	Status StoredStatus
	Pace   WatchPace

	// StillReleasing mirrors the external catalog's "more installments
	// coming" fact; refreshed from TMDB, never derived locally.
	StillReleasing bool

	AddedAt       time.Time
	LastWatchedAt *time.Time // nil until the first watch event
}

// Episode represents one episode of a tracked show. Identity is
// (show, season, episode) and is immutable once created.
type Episode struct {
	ID         uint64 `boltholdKey:"ID"`
	TMDBShowID int64  `boltholdIndex:"TMDBShowID"`

	SeasonNumber  int
	EpisodeNumber int
	Title         string
	AirDate       *time.Time // nil until announced

	// Denormalized cache of watch history. Kept consistent by the store:
	// Watched is true iff at least one history entry exists, WatchedAt is
	// the most recent entry's timestamp.
	Watched   bool
	WatchedAt *time.Time
}

// WatchHistoryEntry is one viewing event. The log is append-only; entries
// are only ever appended or individually deleted, never updated. Multiple
// entries per episode record rewatches.
type WatchHistoryEntry struct {
	ID         uint64 `boltholdKey:"ID"`
	TMDBShowID int64  `boltholdIndex:"TMDBShowID"`

	SeasonNumber  int
	EpisodeNumber int
	WatchedAt     time.Time
}

// Person is a cached TMDB person record for the "seen in" lookup
type Person struct {
	ID     uint64 `boltholdKey:"ID"`
	TMDBID int64  `boltholdIndex:"TMDBID"`

	Name        string
	ProfilePath string

	CreditsCachedAt *time.Time // nil until the filmography has been fetched
}

// PersonCredit is one entry of a person's filmography
type PersonCredit struct {
	ID           uint64 `boltholdKey:"ID"`
	PersonTMDBID int64  `boltholdIndex:"PersonTMDBID"`

	ShowTMDBID int64
	Title      string
	Character  string
	Type       MediaType
}

// ShowCast links a tracked show to a cast member
type ShowCast struct {
	ID         uint64 `boltholdKey:"ID"`
	ShowTMDBID int64  `boltholdIndex:"ShowTMDBID"`

	PersonTMDBID int64
	Character    string
	Order        int
}
