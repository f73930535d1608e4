package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// ErrNotFound is returned when a record does not exist
var ErrNotFound = bolthold.ErrNotFound

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Show operations

// CreateShow creates a new show record
func (db *Database) CreateShow(show *Show) error {
	show.AddedAt = time.Now().UTC()
	return db.store.Insert(bolthold.NextSequence(), show)
}

// UpdateShow updates an existing show record
func (db *Database) UpdateShow(show *Show) error {
	return db.store.Update(show.ID, show)
}

// GetShowByTMDBID retrieves a show by its TMDB id
func (db *Database) GetShowByTMDBID(tmdbID int64) (*Show, error) {
	var show Show
	err := db.store.FindOne(&show, bolthold.Where("TMDBID").Eq(tmdbID))
	if err != nil {
		return nil, err
	}
	return &show, nil
}

// GetAllShows retrieves all tracked shows
func (db *Database) GetAllShows() ([]*Show, error) {
	var shows []*Show
	err := db.store.Find(&shows, nil)
	return shows, err
}

// GetShowsByType retrieves all shows of the given media type
func (db *Database) GetShowsByType(mediaType MediaType) ([]*Show, error) {
	var shows []*Show
	err := db.store.Find(&shows, bolthold.Where("Type").Eq(mediaType))
	return shows, err
}

// SetShowStatus updates the stored status of a show by TMDB id
func (db *Database) SetShowStatus(tmdbID int64, status StoredStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	show, err := db.GetShowByTMDBID(tmdbID)
	if err != nil {
		return err
	}
	show.Status = status
	return db.store.Update(show.ID, show)
}

// DeleteShow deletes a show and its episodes, history, and cast entries
func (db *Database) DeleteShow(tmdbID int64) error {
	show, err := db.GetShowByTMDBID(tmdbID)
	if err != nil {
		return err
	}
	if err := db.store.DeleteMatching(&Episode{}, bolthold.Where("TMDBShowID").Eq(tmdbID)); err != nil {
		return err
	}
	if err := db.store.DeleteMatching(&WatchHistoryEntry{}, bolthold.Where("TMDBShowID").Eq(tmdbID)); err != nil {
		return err
	}
	if err := db.store.DeleteMatching(&ShowCast{}, bolthold.Where("ShowTMDBID").Eq(tmdbID)); err != nil {
		return err
	}
	return db.store.Delete(show.ID, &Show{})
}

// Episode operations

// CreateEpisode creates a new episode record
func (db *Database) CreateEpisode(ep *Episode) error {
	return db.store.Insert(bolthold.NextSequence(), ep)
}

// UpdateEpisode updates an existing episode record
func (db *Database) UpdateEpisode(ep *Episode) error {
	return db.store.Update(ep.ID, ep)
}

// GetEpisode retrieves one episode by its (show, season, episode) identity
func (db *Database) GetEpisode(tmdbShowID int64, season, episode int) (*Episode, error) {
	var ep Episode
	err := db.store.FindOne(&ep,
		bolthold.Where("TMDBShowID").Eq(tmdbShowID).
			And("SeasonNumber").Eq(season).
			And("EpisodeNumber").Eq(episode))
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

// GetEpisodesByShow retrieves all episodes of a show in (season, episode) order
func (db *Database) GetEpisodesByShow(tmdbShowID int64) ([]*Episode, error) {
	var episodes []*Episode
	err := db.store.Find(&episodes, bolthold.Where("TMDBShowID").Eq(tmdbShowID))
	if err != nil {
		return nil, err
	}
	sort.Slice(episodes, func(i, j int) bool {
		if episodes[i].SeasonNumber != episodes[j].SeasonNumber {
			return episodes[i].SeasonNumber < episodes[j].SeasonNumber
		}
		return episodes[i].EpisodeNumber < episodes[j].EpisodeNumber
	})
	return episodes, nil
}

// CountEpisodes returns the number of cached episodes for a show
func (db *Database) CountEpisodes(tmdbShowID int64) (int, error) {
	count, err := db.store.Count(&Episode{}, bolthold.Where("TMDBShowID").Eq(tmdbShowID))
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Watch history operations
//
// The history log is the source of truth for viewing events; the episode's
// Watched/WatchedAt fields are a cache of it. Every mutation below keeps
// the cache consistent with the remaining entries.

// AddWatchHistory appends a viewing event and refreshes the episode cache
// and the show's last-watched timestamp
func (db *Database) AddWatchHistory(entry *WatchHistoryEntry) error {
	if err := db.store.Insert(bolthold.NextSequence(), entry); err != nil {
		return err
	}

	ep, err := db.GetEpisode(entry.TMDBShowID, entry.SeasonNumber, entry.EpisodeNumber)
	if err == nil {
		ep.Watched = true
		if ep.WatchedAt == nil || entry.WatchedAt.After(*ep.WatchedAt) {
			watchedAt := entry.WatchedAt
			ep.WatchedAt = &watchedAt
		}
		if err := db.store.Update(ep.ID, ep); err != nil {
			return err
		}
	}

	show, err := db.GetShowByTMDBID(entry.TMDBShowID)
	if err == nil {
		if show.LastWatchedAt == nil || entry.WatchedAt.After(*show.LastWatchedAt) {
			watchedAt := entry.WatchedAt
			show.LastWatchedAt = &watchedAt
			if err := db.store.Update(show.ID, show); err != nil {
				return err
			}
		}
	}

	return nil
}

// GetWatchHistoryByID retrieves a single history entry
func (db *Database) GetWatchHistoryByID(id uint64) (*WatchHistoryEntry, error) {
	var entry WatchHistoryEntry
	err := db.store.Get(id, &entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetHistoryByShow retrieves all history entries for a show
func (db *Database) GetHistoryByShow(tmdbShowID int64) ([]*WatchHistoryEntry, error) {
	var entries []*WatchHistoryEntry
	err := db.store.Find(&entries, bolthold.Where("TMDBShowID").Eq(tmdbShowID))
	return entries, err
}

// GetHistoryForEpisode retrieves all history entries for one episode
func (db *Database) GetHistoryForEpisode(tmdbShowID int64, season, episode int) ([]*WatchHistoryEntry, error) {
	var entries []*WatchHistoryEntry
	err := db.store.Find(&entries,
		bolthold.Where("TMDBShowID").Eq(tmdbShowID).
			And("SeasonNumber").Eq(season).
			And("EpisodeNumber").Eq(episode))
	return entries, err
}

// DeleteWatchHistory deletes one history entry and recomputes the episode
// cache from the remaining entries. Deleting the last entry flips the
// episode back to unwatched and clears the cached timestamp.
func (db *Database) DeleteWatchHistory(id uint64) error {
	entry, err := db.GetWatchHistoryByID(id)
	if err != nil {
		return err
	}
	if err := db.store.Delete(id, &WatchHistoryEntry{}); err != nil {
		return err
	}
	return db.refreshEpisodeCache(entry.TMDBShowID, entry.SeasonNumber, entry.EpisodeNumber)
}

// DeleteHistoryForEpisode removes all viewing events for one episode and
// resets its cache (the "mark unwatched" path)
func (db *Database) DeleteHistoryForEpisode(tmdbShowID int64, season, episode int) error {
	err := db.store.DeleteMatching(&WatchHistoryEntry{},
		bolthold.Where("TMDBShowID").Eq(tmdbShowID).
			And("SeasonNumber").Eq(season).
			And("EpisodeNumber").Eq(episode))
	if err != nil {
		return err
	}
	return db.refreshEpisodeCache(tmdbShowID, season, episode)
}

// refreshEpisodeCache recomputes an episode's denormalized watched flag and
// timestamp as the maximum over its remaining history entries
func (db *Database) refreshEpisodeCache(tmdbShowID int64, season, episode int) error {
	ep, err := db.GetEpisode(tmdbShowID, season, episode)
	if err != nil {
		if err == bolthold.ErrNotFound {
			return nil
		}
		return err
	}

	entries, err := db.GetHistoryForEpisode(tmdbShowID, season, episode)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		ep.Watched = false
		ep.WatchedAt = nil
		return db.store.Update(ep.ID, ep)
	}

	latest := entries[0].WatchedAt
	for _, e := range entries[1:] {
		if e.WatchedAt.After(latest) {
			latest = e.WatchedAt
		}
	}
	ep.Watched = true
	ep.WatchedAt = &latest
	return db.store.Update(ep.ID, ep)
}

// WatchedShowIDs returns the TMDB ids of all shows with at least one
// watched episode, for the "seen in" intersection
func (db *Database) WatchedShowIDs() (map[int64]bool, error) {
	var episodes []*Episode
	err := db.store.Find(&episodes, bolthold.Where("Watched").Eq(true))
	if err != nil {
		return nil, err
	}

	ids := make(map[int64]bool, len(episodes))
	for _, ep := range episodes {
		ids[ep.TMDBShowID] = true
	}
	return ids, nil
}

// People operations

// UpsertPerson creates or updates a cached person record
func (db *Database) UpsertPerson(person *Person) error {
	var existing Person
	err := db.store.FindOne(&existing, bolthold.Where("TMDBID").Eq(person.TMDBID))
	if err == bolthold.ErrNotFound {
		return db.store.Insert(bolthold.NextSequence(), person)
	}
	if err != nil {
		return err
	}
	person.ID = existing.ID
	return db.store.Update(existing.ID, person)
}

// GetPersonByTMDBID retrieves a cached person by TMDB id
func (db *Database) GetPersonByTMDBID(tmdbID int64) (*Person, error) {
	var person Person
	err := db.store.FindOne(&person, bolthold.Where("TMDBID").Eq(tmdbID))
	if err != nil {
		return nil, err
	}
	return &person, nil
}

// SavePersonCredits replaces a person's cached filmography
func (db *Database) SavePersonCredits(personTMDBID int64, credits []*PersonCredit) error {
	err := db.store.DeleteMatching(&PersonCredit{}, bolthold.Where("PersonTMDBID").Eq(personTMDBID))
	if err != nil {
		return err
	}
	for _, credit := range credits {
		if err := db.store.Insert(bolthold.NextSequence(), credit); err != nil {
			return err
		}
	}
	return nil
}

// GetPersonCredits retrieves a person's cached filmography
func (db *Database) GetPersonCredits(personTMDBID int64) ([]*PersonCredit, error) {
	var credits []*PersonCredit
	err := db.store.Find(&credits, bolthold.Where("PersonTMDBID").Eq(personTMDBID))
	return credits, err
}

// AddShowCast adds a cast entry for a show
func (db *Database) AddShowCast(cast *ShowCast) error {
	return db.store.Insert(bolthold.NextSequence(), cast)
}

// GetShowCast retrieves the cached cast of a show in billing order
func (db *Database) GetShowCast(tmdbShowID int64) ([]*ShowCast, error) {
	var cast []*ShowCast
	err := db.store.Find(&cast, bolthold.Where("ShowTMDBID").Eq(tmdbShowID))
	if err != nil {
		return nil, err
	}
	sort.Slice(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })
	return cast, nil
}

// CountShowCast returns the number of cached cast entries for a show
func (db *Database) CountShowCast(tmdbShowID int64) (int, error) {
	count, err := db.store.Count(&ShowCast{}, bolthold.Where("ShowTMDBID").Eq(tmdbShowID))
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
