package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// submitRetries bounds how often a submission is re-attempted after losing a
// dedup race or a sqlite write lock.
const submitRetries = 5

// Voter identifies one guest who voted for a request.
type Voter struct {
	GuestID     string `json:"guest_id"`
	DisplayName string `json:"display_name"`
}

// RequestWithVoters is a request plus its voter list, the shape the API
// returns for request reads.
type RequestWithVoters struct {
	models.Request
	Voters []Voter `json:"voters"`
}

// SubmitInput carries one guest submission of a candidate song.
type SubmitInput struct {
	EventID         string
	GuestID         string
	Title           string
	Artist          *string
	Source          string
	SourceURL       string
	ThumbnailURL    *string
	DurationSeconds *int
}

// SubmitResult is the outcome of a submission. Merged is true when the
// submission attached a vote to an existing request instead of creating one.
type SubmitResult struct {
	Request RequestWithVoters
	Merged  bool
}

// SubmitRequest creates a new request with an initial vote, or merges the
// submission into an existing request keyed by (event_id, source_url).
//
// The whole submission runs in one transaction, and both dedup keys are
// schema-level unique indexes. A concurrent submission that wins the insert
// race surfaces here as a uniqueness violation or a sqlite write-lock
// failure; both are retried (bounded) and resolve through the merge path.
func SubmitRequest(db *gorm.DB, in SubmitInput) (*SubmitResult, error) {
	var event models.Event
	if err := db.Select("id", "is_active").First(&event, "id = ?", in.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if !event.IsActive {
		return nil, ErrEventClosed
	}

	if err := guestExists(db, in.GuestID); err != nil {
		return nil, err
	}

	result, err := submitOnce(db, in)
	for attempt := 0; attempt < submitRetries && (isUniqueViolation(err) || isLockContention(err)); attempt++ {
		// Lost the request-creation race; the request exists now, so the
		// retry takes the merge path. A vote-key violation resolves the
		// same way: the retry finds the vote and reports the conflict.
		// Lock contention (sqlite read-to-write upgrade) also resolves by
		// re-running the transaction once the winning writer commits.
		if isLockContention(err) {
			time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
		}
		result, err = submitOnce(db, in)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// submitOnce performs a single atomic submit attempt.
func submitOnce(db *gorm.DB, in SubmitInput) (*SubmitResult, error) {
	var out SubmitResult

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Request
		err := tx.Where("event_id = ? AND source_url = ?", in.EventID, in.SourceURL).
			First(&existing).Error

		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err == nil {
			// Duplicate URL: merge into the existing request.
			var prior models.Vote
			voteErr := tx.Where("request_id = ? AND guest_id = ?", existing.ID, in.GuestID).
				First(&prior).Error
			if voteErr == nil {
				return &AlreadyVotedError{Request: existing}
			}
			if !errors.Is(voteErr, gorm.ErrRecordNotFound) {
				return voteErr
			}

			if err := tx.Create(&models.Vote{
				ID:        utils.NewID(utils.PrefixVote),
				RequestID: existing.ID,
				GuestID:   in.GuestID,
			}).Error; err != nil {
				return err
			}

			// vote_count arithmetic stays inside this transaction so the
			// denormalized counter can never drift from the vote rows.
			if err := tx.Model(&models.Request{}).
				Where("id = ?", existing.ID).
				UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error; err != nil {
				return err
			}

			merged, err := loadRequestWithVoters(tx, existing.ID)
			if err != nil {
				return err
			}
			out = SubmitResult{Request: *merged, Merged: true}
			return nil
		}

		// First submission of this URL for the event.
		request := models.Request{
			ID:              utils.NewID(utils.PrefixRequest),
			EventID:         in.EventID,
			Title:           in.Title,
			Artist:          in.Artist,
			Source:          in.Source,
			SourceURL:       in.SourceURL,
			ThumbnailURL:    in.ThumbnailURL,
			DurationSeconds: in.DurationSeconds,
			VoteCount:       1,
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.Vote{
			ID:        utils.NewID(utils.PrefixVote),
			RequestID: request.ID,
			GuestID:   in.GuestID,
		}).Error; err != nil {
			return err
		}

		created, err := loadRequestWithVoters(tx, request.ID)
		if err != nil {
			return err
		}
		out = SubmitResult{Request: *created, Merged: false}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// ListEventRequests returns all requests for an event in the canonical order:
// vote_count descending, ties broken by created_at ascending.
func ListEventRequests(db *gorm.DB, eventID string) ([]RequestWithVoters, error) {
	if err := eventExists(db, eventID); err != nil {
		return nil, err
	}

	var requests []models.Request
	if err := db.Where("event_id = ?", eventID).
		Order("vote_count DESC, created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}

	result := make([]RequestWithVoters, 0, len(requests))
	for _, r := range requests {
		voters, err := requestVoters(db, r.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, RequestWithVoters{Request: r, Voters: voters})
	}

	return result, nil
}

// AddVote adds a vote from a guest to an existing request.
func AddVote(db *gorm.DB, requestID, guestID string) (*models.Request, error) {
	var request models.Request
	if err := db.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if err := guestExists(db, guestID); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var prior models.Vote
		voteErr := tx.Where("request_id = ? AND guest_id = ?", requestID, guestID).
			First(&prior).Error
		if voteErr == nil {
			return &AlreadyVotedError{Request: request}
		}
		if !errors.Is(voteErr, gorm.ErrRecordNotFound) {
			return voteErr
		}

		if err := tx.Create(&models.Vote{
			ID:        utils.NewID(utils.PrefixVote),
			RequestID: requestID,
			GuestID:   guestID,
		}).Error; err != nil {
			if isUniqueViolation(err) {
				return &AlreadyVotedError{Request: request}
			}
			return err
		}

		return tx.Model(&models.Request{}).
			Where("id = ?", requestID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	if err := db.First(&request, "id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// RetractVote removes a guest's vote from a request and decrements its
// counter. The request itself survives even at zero votes.
func RetractVote(db *gorm.DB, requestID, guestID string) (*models.Request, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var vote models.Vote
		if err := tx.Where("request_id = ? AND guest_id = ?", requestID, guestID).
			First(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVoteNotFound
			}
			return err
		}

		if err := tx.Delete(&models.Vote{}, "id = ?", vote.ID).Error; err != nil {
			return err
		}

		return tx.Model(&models.Request{}).
			Where("id = ?", requestID).
			UpdateColumn("vote_count", gorm.Expr("vote_count - 1")).Error
	})
	if err != nil {
		return nil, err
	}

	var request models.Request
	if err := db.First(&request, "id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// GuestDeleteRequest deletes a request on behalf of a guest, allowed only
// while that guest is the sole voter.
func GuestDeleteRequest(db *gorm.DB, requestID, guestID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := requestExists(tx, requestID); err != nil {
			return err
		}

		var votes []models.Vote
		if err := tx.Where("request_id = ?", requestID).Find(&votes).Error; err != nil {
			return err
		}
		if len(votes) != 1 || votes[0].GuestID != guestID {
			return ErrNotSoleVoter
		}

		return deleteRequestTx(tx, requestID)
	})
}

// DeleteRequest removes a request and its votes. DJ console operation.
func DeleteRequest(db *gorm.DB, requestID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := requestExists(tx, requestID); err != nil {
			return err
		}
		return deleteRequestTx(tx, requestID)
	})
}

// deleteRequestTx removes the vote rows explicitly before the request so the
// cascade also holds on drivers where foreign keys are off by default.
func deleteRequestTx(tx *gorm.DB, requestID string) error {
	if err := tx.Delete(&models.Vote{}, "request_id = ?", requestID).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.Download{}, "request_id = ?", requestID).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Request{}, "id = ?", requestID).Error
}

// loadRequestWithVoters reads a request and its voter list.
func loadRequestWithVoters(db *gorm.DB, requestID string) (*RequestWithVoters, error) {
	var request models.Request
	if err := db.First(&request, "id = ?", requestID).Error; err != nil {
		return nil, err
	}

	voters, err := requestVoters(db, requestID)
	if err != nil {
		return nil, err
	}

	return &RequestWithVoters{Request: request, Voters: voters}, nil
}

// requestVoters lists a request's voters in vote order.
func requestVoters(db *gorm.DB, requestID string) ([]Voter, error) {
	voters := make([]Voter, 0, 4)
	err := db.Table("votes v").
		Select("g.id AS guest_id, g.display_name").
		Joins("JOIN guests g ON v.guest_id = g.id").
		Where("v.request_id = ?", requestID).
		Order("v.created_at ASC").
		Scan(&voters).Error
	if err != nil {
		return nil, err
	}
	return voters, nil
}

func eventExists(db *gorm.DB, eventID string) error {
	var count int64
	if err := db.Model(&models.Event{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}

func guestExists(db *gorm.DB, guestID string) error {
	var count int64
	if err := db.Model(&models.Guest{}).Where("id = ?", guestID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrGuestNotFound
	}
	return nil
}

func requestExists(db *gorm.DB, requestID string) error {
	var count int64
	if err := db.Model(&models.Request{}).Where("id = ?", requestID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRequestNotFound
	}
	return nil
}
