package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reservehub/internal/domain"
	"reservehub/internal/events"
	"reservehub/internal/modules/ledger"
	"reservehub/internal/repository"

	"gorm.io/gorm"
)

const defaultRating = 5

type Service struct {
	db        *gorm.DB
	ledger    *ledger.Service
	publisher events.Publisher
	points    int64
}

// NewService wires the review flow; points is awarded on creation and taken
// back on deletion.
func NewService(db *gorm.DB, ledgerSvc *ledger.Service, publisher events.Publisher, points int64) *Service {
	return &Service{db: db, ledger: ledgerSvc, publisher: publisher, points: points}
}

func (s *Service) Create(ctx context.Context, userID, serviceID int64, req CreateReviewRequest) (*Result, error) {
	rating := req.Rating
	if rating == 0 {
		rating = defaultRating
	}
	rv := &domain.Review{
		UserID:    userID,
		ServiceID: serviceID,
		Rating:    rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	var txn *domain.BalanceTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewCatalogRepository(tx).GetService(ctx, serviceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceNotFound
			}
			return err
		}
		if err := repository.NewReviewRepository(tx).Create(ctx, rv); err != nil {
			return err
		}

		var err error
		txn, err = s.ledger.CreditTx(tx, ledger.Entry{
			UserID:         userID,
			Amount:         s.points,
			Kind:           domain.TxReviewReward,
			Reference:      reference(rv.ID),
			IdempotencyKey: reference(rv.ID) + ":reward",
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.ReviewCreated, events.ReviewEvent{
		ReviewID: rv.ID, UserID: userID, ServiceID: serviceID, Points: s.points,
	})
	return &Result{Review: rv, Points: s.points, Balance: txn.BalanceAfter}, nil
}

// Delete removes the caller's review and charges the reward back. It fails
// with ledger.ErrInsufficientFunds when the points were already spent.
func (s *Service) Delete(ctx context.Context, userID, id int64) (*Result, error) {
	var (
		rv  *domain.Review
		txn *domain.BalanceTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewReviewRepository(tx)

		var err error
		rv, err = repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if rv.UserID != userID {
			return ErrForbidden
		}

		txn, err = s.ledger.DebitTx(tx, ledger.Entry{
			UserID:         userID,
			Amount:         s.points,
			Kind:           domain.TxReviewPenalty,
			Reference:      reference(rv.ID),
			IdempotencyKey: reference(rv.ID) + ":penalty",
		})
		if err != nil {
			return err
		}
		return repo.Delete(ctx, rv.ID)
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.ReviewDeleted, events.ReviewEvent{
		ReviewID: rv.ID, UserID: userID, ServiceID: rv.ServiceID, Points: -s.points,
	})
	return &Result{Review: rv, Points: -s.points, Balance: txn.BalanceAfter}, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]MyReview, error) {
	reviews, err := repository.NewReviewRepository(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]MyReview, 0, len(reviews))
	for _, rv := range reviews {
		item := MyReview{ID: rv.ID, ServiceID: rv.ServiceID, Rating: rv.Rating, Comment: rv.Comment, CreatedAt: rv.CreatedAt}
		if rv.Service != nil {
			item.ServiceName = rv.Service.Name
		}
		out = append(out, item)
	}
	return out, nil
}

func reference(id int64) string {
	return fmt.Sprintf("review:%d", id)
}
