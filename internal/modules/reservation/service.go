package reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/events"
	"reservehub/internal/modules/ledger"
	"reservehub/internal/pkg/logger"
	"reservehub/internal/repository"

	"gorm.io/gorm"
)

const referencePrefix = "reservation:"

// errReplayed aborts a creation whose idempotency key was claimed by a
// concurrent request while this one was running.
var errReplayed = errors.New("idempotency key already used")

type Service struct {
	db        *gorm.DB
	ledger    *ledger.Service
	messenger AdminMessenger
	publisher events.Publisher
	now       func() time.Time
}

func NewService(db *gorm.DB, ledgerSvc *ledger.Service, messenger AdminMessenger, publisher events.Publisher) *Service {
	return &Service{db: db, ledger: ledgerSvc, messenger: messenger, publisher: publisher, now: time.Now}
}

/* ---------- USER ---------- */

// Create books an option and debits its price in one transaction. A non-empty
// idemKey makes retries return the reservation created by the first call;
// replayed reports whether that happened.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest, idemKey string) (res *domain.Reservation, replayed bool, err error) {
	key := ""
	if idemKey = strings.TrimSpace(idemKey); idemKey != "" {
		key = fmt.Sprintf("%s%d:%s", referencePrefix, userID, idemKey)
		existing, err := s.ledger.FindByKeyTx(s.db.WithContext(ctx), key)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			res, err := s.fromReference(ctx, existing.Reference)
			return res, true, err
		}
	}

	var claimed *domain.BalanceTransaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catalog := repository.NewCatalogRepository(tx)

		svc, err := catalog.GetService(ctx, req.ServiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceNotFound
			}
			return err
		}
		option, err := catalog.GetOption(ctx, req.OptionID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if option == nil || option.ServiceID != svc.ID {
			return ErrOptionMismatch
		}

		res, err = s.build(userID, svc, option, req)
		if err != nil {
			return err
		}
		if err := repository.NewReservationRepository(tx).Create(ctx, res); err != nil {
			return err
		}
		if res.Price == 0 {
			return nil
		}

		ref := referencePrefix + strconv.FormatInt(res.ID, 10)
		txn, err := s.ledger.DebitTx(tx, ledger.Entry{
			UserID:         userID,
			Amount:         res.Price,
			Kind:           domain.TxReservationDebit,
			Reference:      ref,
			IdempotencyKey: key,
		})
		if err != nil {
			return err
		}
		if txn.Reference != ref {
			claimed = txn
			return errReplayed
		}
		return nil
	})
	if errors.Is(err, errReplayed) {
		res, err := s.fromReference(ctx, claimed.Reference)
		return res, true, err
	}
	if err != nil {
		return nil, false, err
	}

	events.Emit(ctx, s.publisher, events.ReservationCreated, events.ReservationCreatedEvent{
		ReservationID: res.ID,
		UserID:        userID,
		ServiceName:   res.ServiceName,
		ServiceType:   string(res.ServiceType),
		Price:         res.Price,
		Start:         res.Start,
	})
	logger.InfoContext(ctx, "reservation created", "reservation_id", res.ID, "price", res.Price)
	return res, false, nil
}

// build applies the per-type date and price rules.
func (s *Service) build(userID int64, svc *domain.Service, option *domain.ServiceOption, req CreateRequest) (*domain.Reservation, error) {
	now := s.now().UTC()
	optionID := option.ID
	res := &domain.Reservation{
		UserID:      userID,
		OptionID:    &optionID,
		ServiceName: svc.Name,
		ServiceType: svc.Type,
		Status:      domain.ReservationPending,
	}

	switch svc.Type {
	case domain.ServiceHotel:
		start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.StartDate), time.UTC)
		if err != nil {
			return nil, ErrInvalidDate
		}
		end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.EndDate), time.UTC)
		if err != nil {
			return nil, ErrInvalidDate
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if start.Before(today) {
			return nil, ErrDateInPast
		}
		if !end.After(start) {
			return nil, ErrInvalidRange
		}
		nights := int64(end.Sub(start).Hours() / 24)
		res.Start, res.End = start, &end
		res.Price = option.Price * nights

	case domain.ServiceRestaurant, domain.ServiceSpa:
		start, err := parseDateTime(req.DateTime)
		if err != nil {
			return nil, ErrInvalidDate
		}
		if start.Before(now) {
			return nil, ErrDateInPast
		}
		res.Start = start
		res.Price = option.Price

	default:
		res.Start = now
		res.Price = option.Price
	}
	return res, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]View, error) {
	list, err := repository.NewReservationRepository(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(list))
	for i := range list {
		out = append(out, toView(&list[i]))
	}
	return out, nil
}

func (s *Service) RequestCancellation(ctx context.Context, userID, id int64) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.EventRequestCancellation, func(res *domain.Reservation) error {
		if res.UserID != userID {
			return ErrNotFound
		}
		if res.Status == domain.ReservationPendingCancellation {
			return ErrAlreadyPendingCancellation
		}
		return nil
	})
}

// RequestDateChange proposes new dates; staff approve or reject them later.
// The price is not recomputed.
func (s *Service) RequestDateChange(ctx context.Context, userID, id int64, req ChangeDateRequest) (*domain.Reservation, error) {
	newStart, err := parseDateTime(req.NewStart)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if newStart.Before(s.now().UTC()) {
		return nil, ErrDateInPast
	}
	var newEnd *time.Time
	if req.NewEnd != nil && strings.TrimSpace(*req.NewEnd) != "" {
		end, err := parseDateTime(*req.NewEnd)
		if err != nil {
			return nil, ErrInvalidDate
		}
		if !end.After(newStart) {
			return nil, ErrInvalidRange
		}
		newEnd = &end
	}

	return s.transition(ctx, id, domain.EventRequestModification, func(res *domain.Reservation) error {
		if res.UserID != userID {
			return ErrNotFound
		}
		res.NewStart, res.NewEnd = &newStart, newEnd
		return nil
	})
}

/* ---------- ADMIN ---------- */

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]domain.Reservation, int64, error) {
	st := domain.ReservationStatus(strings.TrimSpace(status))
	if st != "" && !st.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return repository.NewReservationRepository(s.db).List(ctx, st, limit, offset)
}

// Bulk applies ev to every id independently; one failure does not undo the
// others.
func (s *Service) Bulk(ctx context.Context, ev domain.ReservationEvent, ids []int64) []BulkResult {
	seen := make(map[int64]bool, len(ids))
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		var err error
		switch ev {
		case domain.EventApproveCancellation:
			_, err = s.ApproveCancellation(ctx, id)
		case domain.EventCancel:
			_, err = s.Cancel(ctx, id)
		default:
			_, err = s.transition(ctx, id, ev, nil)
		}

		r := BulkResult{ID: id, OK: err == nil}
		if err != nil {
			r.Error = err.Error()
			logger.WarnContext(ctx, "bulk reservation action failed", "reservation_id", id, "event", ev, "error", err)
		}
		results = append(results, r)
	}
	return results
}

// ApproveCancellation cancels the reservation and refunds its full price.
func (s *Service) ApproveCancellation(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.transitionTx(ctx, id, domain.EventApproveCancellation, nil, s.refundTx)
}

// Cancel is the staff-initiated cancellation of a pending or confirmed
// reservation. It refunds like an approved request.
func (s *Service) Cancel(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.transitionTx(ctx, id, domain.EventCancel, nil, s.refundTx)
}

// refundTx credits the full price once per reservation, whichever path
// cancelled it.
func (s *Service) refundTx(tx *gorm.DB, res *domain.Reservation) error {
	if res.Price <= 0 {
		return nil
	}
	_, err := s.ledger.CreditTx(tx, ledger.Entry{
		UserID:         res.UserID,
		Amount:         res.Price,
		Kind:           domain.TxCancellationRefund,
		Reference:      referencePrefix + strconv.FormatInt(res.ID, 10),
		IdempotencyKey: fmt.Sprintf("refund:%s%d", referencePrefix, res.ID),
	})
	return err
}

// SendMessage writes a staff message to the reservation's owner, linked to it.
func (s *Service) SendMessage(ctx context.Context, id int64, req MessageRequest) (*domain.Message, error) {
	res, err := repository.NewReservationRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = fmt.Sprintf("Reservation #%d: %s", res.ID, res.ServiceName)
	}
	return s.messenger.SendAdminMessage(ctx, res.UserID, subject, strings.TrimSpace(req.Content), []int64{res.ID})
}

func (s *Service) transition(ctx context.Context, id int64, ev domain.ReservationEvent, check func(*domain.Reservation) error) (*domain.Reservation, error) {
	return s.transitionTx(ctx, id, ev, check, nil)
}

// transitionTx re-reads the row under lock, runs check, applies ev and then
// after, all in one transaction.
func (s *Service) transitionTx(
	ctx context.Context,
	id int64,
	ev domain.ReservationEvent,
	check func(*domain.Reservation) error,
	after func(*gorm.DB, *domain.Reservation) error,
) (*domain.Reservation, error) {
	var (
		res  *domain.Reservation
		from domain.ReservationStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewReservationRepository(tx)

		var err error
		res, err = repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		from = res.Status

		if check != nil {
			if err := check(res); err != nil {
				return err
			}
		}
		if err := res.Apply(ev); err != nil {
			return err
		}
		if err := repo.Save(ctx, res); err != nil {
			return err
		}
		if after != nil {
			return after(tx, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.ReservationStatusChanged, events.ReservationStatusChangedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		From:          string(from),
		To:            string(res.Status),
		ChangedAt:     s.now().UTC(),
	})
	return res, nil
}

func (s *Service) fromReference(ctx context.Context, ref string) (*domain.Reservation, error) {
	raw, ok := strings.CutPrefix(ref, referencePrefix)
	if !ok {
		return nil, fmt.Errorf("unexpected ledger reference %q", ref)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected ledger reference %q: %w", ref, err)
	}
	res, err := repository.NewReservationRepository(s.db).GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return res, err
}

func parseDateTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	t, err := time.ParseInLocation(dateTimeLayout, v, time.UTC)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04", v, time.UTC)
}
