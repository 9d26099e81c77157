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

// Video operations

// CreateVideo creates a new video in the database
func (db *Database) CreateVideo(video *Video) error {
	video.CreatedAt = time.Now()
	video.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), video)
}

// UpdateVideo updates an existing video
func (db *Database) UpdateVideo(video *Video) error {
	video.UpdatedAt = time.Now()
	return db.store.Update(video.ID, video)
}

// GetVideoByID retrieves a video by ID
func (db *Database) GetVideoByID(id uint64) (*Video, error) {
	var video Video
	err := db.store.Get(id, &video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetAllVideos retrieves all videos ordered by creation time descending
func (db *Database) GetAllVideos() ([]*Video, error) {
	var videos []*Video
	err := db.store.Find(&videos, nil)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(videos, func(i, j int) bool {
		if videos[i].CreatedAt.Equal(videos[j].CreatedAt) {
			return videos[i].ID > videos[j].ID
		}
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})

	return videos, nil
}

// DeleteVideo deletes a video and its dependent rows in one transaction
func (db *Database) DeleteVideo(id uint64) error {
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		if err := db.store.TxDelete(tx, id, &Video{}); err != nil {
			return err
		}
		if err := db.store.TxDeleteMatching(tx, &DownloadLink{}, bolthold.Where("VideoID").Eq(id)); err != nil {
			return err
		}
		return db.store.TxDeleteMatching(tx, &CastMember{}, bolthold.Where("VideoID").Eq(id))
	})
}

// Download link operations

// GetLinksByVideoID retrieves a video's download links in insertion order
func (db *Database) GetLinksByVideoID(videoID uint64) ([]*DownloadLink, error) {
	var links []*DownloadLink
	err := db.store.Find(&links, bolthold.Where("VideoID").Eq(videoID))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Position < links[j].Position
	})

	return links, nil
}

// ReplaceLinks replaces all download links for a video with the given set.
// Delete and bulk insert run inside a single transaction so a crash cannot
// leave the video with a partial link set.
func (db *Database) ReplaceLinks(videoID uint64, links []*DownloadLink) error {
	now := time.Now()
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		if err := db.store.TxDeleteMatching(tx, &DownloadLink{}, bolthold.Where("VideoID").Eq(videoID)); err != nil {
			return err
		}
		for i, link := range links {
			link.VideoID = videoID
			link.Position = i
			link.CreatedAt = now
			if err := db.store.TxInsert(tx, bolthold.NextSequence(), link); err != nil {
				return err
			}
		}
		return nil
	})
}

// Cast operations

// CreateCastMember creates a cast member record
func (db *Database) CreateCastMember(member *CastMember) error {
	return db.store.Insert(bolthold.NextSequence(), member)
}

// GetCastByVideoID retrieves all cast members for a video
func (db *Database) GetCastByVideoID(videoID uint64) ([]*CastMember, error) {
	var cast []*CastMember
	err := db.store.Find(&cast, bolthold.Where("VideoID").Eq(videoID))
	return cast, err
}

// Advertisement operations

// CreateAd creates a new advertisement
func (db *Database) CreateAd(ad *Advertisement) error {
	ad.CreatedAt = time.Now()
	ad.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), ad)
}

// UpdateAd updates an existing advertisement
func (db *Database) UpdateAd(ad *Advertisement) error {
	ad.UpdatedAt = time.Now()
	return db.store.Update(ad.ID, ad)
}

// GetAdByID retrieves an advertisement by ID
func (db *Database) GetAdByID(id uint64) (*Advertisement, error) {
	var ad Advertisement
	err := db.store.Get(id, &ad)
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// GetAllAds retrieves all advertisements ordered by placement then display order
func (db *Database) GetAllAds() ([]*Advertisement, error) {
	var ads []*Advertisement
	err := db.store.Find(&ads, nil)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(ads, func(i, j int) bool {
		if ads[i].Placement != ads[j].Placement {
			return ads[i].Placement < ads[j].Placement
		}
		return ads[i].DisplayOrder < ads[j].DisplayOrder
	})

	return ads, nil
}

// GetActiveAdsByPlacement retrieves active ads for a placement ordered by
// display order ascending, lowest ID first on ties
func (db *Database) GetActiveAdsByPlacement(placement Placement) ([]*Advertisement, error) {
	var ads []*Advertisement
	err := db.store.Find(&ads, bolthold.Where("Placement").Eq(placement).And("IsActive").Eq(true))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(ads, func(i, j int) bool {
		if ads[i].DisplayOrder != ads[j].DisplayOrder {
			return ads[i].DisplayOrder < ads[j].DisplayOrder
		}
		return ads[i].ID < ads[j].ID
	})

	return ads, nil
}

// DeleteAd deletes an advertisement by ID
func (db *Database) DeleteAd(id uint64) error {
	return db.store.Delete(id, &Advertisement{})
}

// User operations

// CreateUser creates a new user
func (db *Database) CreateUser(user *User) error {
	user.CreatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), user)
}

// GetUserByEmail retrieves a user by email
func (db *Database) GetUserByEmail(email string) (*User, error) {
	var user User
	err := db.store.FindOne(&user, bolthold.Where("Email").Eq(email))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUserRole assigns a role to a user
func (db *Database) CreateUserRole(role *UserRole) error {
	return db.store.Insert(bolthold.NextSequence(), role)
}

// UserHasRole checks whether a user has the given role
func (db *Database) UserHasRole(userID uint64, role Role) (bool, error) {
	var roles []*UserRole
	err := db.store.Find(&roles, bolthold.Where("UserID").Eq(userID).And("Role").Eq(role))
	if err != nil {
		return false, err
	}
	return len(roles) > 0, nil
}

// Session operations

// CreateSession stores a session keyed by its token
func (db *Database) CreateSession(session *Session) error {
	session.CreatedAt = time.Now()
	return db.store.Insert(session.Token, session)
}

// GetSession retrieves a session by token
func (db *Database) GetSession(token string) (*Session, error) {
	var session Session
	err := db.store.Get(token, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession deletes a session by token
func (db *Database) DeleteSession(token string) error {
	return db.store.Delete(token, &Session{})
}

// DeleteExpiredSessions removes all sessions past their expiry
func (db *Database) DeleteExpiredSessions(now time.Time) (int, error) {
	var sessions []*Session
	err := db.store.Find(&sessions, nil)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, session := range sessions {
		if !session.Expired(now) {
			continue
		}
		if err := db.store.Delete(session.Token, &Session{}); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}
