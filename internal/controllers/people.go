package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/nextup/internal/models"
	"github.com/amaumene/nextup/internal/services/tmdb"
	"github.com/sirupsen/logrus"
)

// PeopleController answers "where have I seen this person?" by
// intersecting a person's filmography with the shows the user has
// actually watched
type PeopleController struct {
	db         *models.Database
	tmdbClient *tmdb.Client
	logger     *logrus.Logger
}

// NewPeopleController creates a new people controller
func NewPeopleController(db *models.Database, tmdbClient *tmdb.Client, logger *logrus.Logger) *PeopleController {
	return &PeopleController{
		db:         db,
		tmdbClient: tmdbClient,
		logger:     logger,
	}
}

// CastEntry is one cast member of a tracked show
type CastEntry struct {
	PersonTMDBID int64  `json:"person_tmdb_id"`
	Name         string `json:"name"`
	ProfilePath  string `json:"profile_path"`
	Character    string `json:"character"`
}

// ShowCast returns a show's cast in billing order, caching it from TMDB
// on first use
func (c *PeopleController) ShowCast(ctx context.Context, tmdbShowID int64) ([]CastEntry, error) {
	if err := c.ensureCastCached(ctx, tmdbShowID); err != nil {
		return nil, err
	}

	cast, err := c.db.GetShowCast(tmdbShowID)
	if err != nil {
		return nil, err
	}

	entries := make([]CastEntry, 0, len(cast))
	for _, member := range cast {
		entry := CastEntry{
			PersonTMDBID: member.PersonTMDBID,
			Character:    member.Character,
		}
		if person, err := c.db.GetPersonByTMDBID(member.PersonTMDBID); err == nil {
			entry.Name = person.Name
			entry.ProfilePath = person.ProfilePath
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *PeopleController) ensureCastCached(ctx context.Context, tmdbShowID int64) error {
	count, err := c.db.CountShowCast(tmdbShowID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	credits, err := c.tmdbClient.GetShowCredits(ctx, tmdbShowID)
	if err != nil {
		return fmt.Errorf("failed to fetch show credits: %w", err)
	}

	for _, member := range credits.Cast {
		if member.ID == 0 {
			continue
		}
		if _, err := c.db.GetPersonByTMDBID(member.ID); err == models.ErrNotFound {
			if err := c.db.UpsertPerson(&models.Person{
				TMDBID:      member.ID,
				Name:        member.Name,
				ProfilePath: member.ProfilePath,
			}); err != nil {
				return err
			}
		}
		if err := c.db.AddShowCast(&models.ShowCast{
			ShowTMDBID:   tmdbShowID,
			PersonTMDBID: member.ID,
			Character:    member.Character,
			Order:        member.Order,
		}); err != nil {
			return err
		}
	}

	c.logger.WithFields(logrus.Fields{
		"tmdb_id": tmdbShowID,
		"cast":    len(credits.Cast),
	}).Debug("Cached show cast")

	return nil
}

// SeenInCredit is one credit the user has watched the person in
type SeenInCredit struct {
	ShowTMDBID int64            `json:"show_tmdb_id"`
	Title      string           `json:"title"`
	Character  string           `json:"character"`
	Type       models.MediaType `json:"type"`
}

// SeenIn returns the tracked-and-watched titles a person appears in: the
// intersection of their cached filmography with shows having at least one
// watched episode
func (c *PeopleController) SeenIn(ctx context.Context, personTMDBID int64) ([]SeenInCredit, error) {
	if err := c.ensurePersonCreditsCached(ctx, personTMDBID); err != nil {
		return nil, err
	}

	credits, err := c.db.GetPersonCredits(personTMDBID)
	if err != nil {
		return nil, err
	}

	watched, err := c.db.WatchedShowIDs()
	if err != nil {
		return nil, err
	}

	var seen []SeenInCredit
	for _, credit := range credits {
		if !watched[credit.ShowTMDBID] {
			continue
		}
		seen = append(seen, SeenInCredit{
			ShowTMDBID: credit.ShowTMDBID,
			Title:      credit.Title,
			Character:  credit.Character,
			Type:       credit.Type,
		})
	}
	return seen, nil
}

func (c *PeopleController) ensurePersonCreditsCached(ctx context.Context, personTMDBID int64) error {
	person, err := c.db.GetPersonByTMDBID(personTMDBID)
	if err == models.ErrNotFound {
		fetched, err := c.tmdbClient.GetPerson(ctx, personTMDBID)
		if err != nil {
			return fmt.Errorf("failed to fetch person: %w", err)
		}
		person = &models.Person{
			TMDBID:      fetched.ID,
			Name:        fetched.Name,
			ProfilePath: fetched.ProfilePath,
		}
		if err := c.db.UpsertPerson(person); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if person.CreditsCachedAt != nil {
		return nil
	}

	combined, err := c.tmdbClient.GetPersonCombinedCredits(ctx, personTMDBID)
	if err != nil {
		return fmt.Errorf("failed to fetch person credits: %w", err)
	}

	credits := make([]*models.PersonCredit, 0, len(combined.Cast))
	for _, credit := range combined.Cast {
		mediaType := models.MediaTypeTV
		if credit.MediaType == "movie" {
			mediaType = models.MediaTypeMovie
		}
		credits = append(credits, &models.PersonCredit{
			PersonTMDBID: personTMDBID,
			ShowTMDBID:   credit.ID,
			Title:        credit.DisplayTitle(),
			Character:    credit.Character,
			Type:         mediaType,
		})
	}
	if err := c.db.SavePersonCredits(personTMDBID, credits); err != nil {
		return err
	}

	now := time.Now().UTC()
	person.CreditsCachedAt = &now
	if err := c.db.UpsertPerson(person); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"person_id": personTMDBID,
		"credits":   len(credits),
	}).Debug("Cached person filmography")

	return nil
}
