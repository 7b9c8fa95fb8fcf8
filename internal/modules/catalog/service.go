package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	repo    CatalogRepository
	reviews ReviewLister
	unread  UnreadCounter
	now     func() time.Time
}

func NewService(repo CatalogRepository, reviews ReviewLister, unread UnreadCounter) *Service {
	return &Service{repo: repo, reviews: reviews, unread: unread, now: time.Now}
}

/* ---------- PUBLIC ---------- */

// List returns the filtered catalog. userID is 0 for anonymous callers.
func (s *Service) List(ctx context.Context, f repository.ServiceFilter, userID int64) (*ListResult, error) {
	services, err := s.repo.ListServices(ctx, f)
	if err != nil {
		return nil, err
	}
	cities, err := s.repo.Cities(ctx)
	if err != nil {
		return nil, err
	}
	options, err := s.OptionsByType(ctx, f.Type)
	if err != nil {
		return nil, err
	}

	res := &ListResult{
		Services: make([]ServiceSummary, 0, len(services)),
		Cities:   cities,
		Options:  options,
	}
	if res.Cities == nil {
		res.Cities = []string{}
	}
	for i := range services {
		res.Services = append(res.Services, toSummary(&services[i]))
	}

	if userID > 0 && s.unread != nil {
		if res.UnreadReplies, err = s.unread.CountUnreadReplies(ctx, userID); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// OptionsByType lists the option names offered by services of type t. An
// empty or unknown type yields no options.
func (s *Service) OptionsByType(ctx context.Context, t domain.ServiceType) ([]OptionRef, error) {
	if !t.Valid() {
		return []OptionRef{}, nil
	}
	options, err := s.repo.ListOptionsByType(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]OptionRef, 0, len(options))
	for _, o := range options {
		out = append(out, OptionRef{ID: o.ID, Name: o.Name})
	}
	return out, nil
}

func (s *Service) Detail(ctx context.Context, id int64) (*Detail, error) {
	svc, err := s.getService(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &Detail{
		Service:      toSummary(svc),
		Options:      svc.Options,
		Reviews:      []ReviewView{},
		Availability: make([]Availability, 0, len(svc.Options)),
	}
	if d.Options == nil {
		d.Options = []domain.ServiceOption{}
	}
	for _, o := range svc.Options {
		d.Availability = append(d.Availability, Availability{
			OptionID:      o.ID,
			AvailableFrom: formatDate(o.AvailableFrom),
			AvailableTo:   formatDate(o.AvailableTo),
		})
	}

	reviews, err := s.reviews.ListByService(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, rv := range reviews {
		view := ReviewView{ID: rv.ID, Rating: rv.Rating, Comment: rv.Comment, CreatedAt: rv.CreatedAt}
		if rv.User != nil {
			view.UserName = rv.User.FullName()
		}
		d.Reviews = append(d.Reviews, view)
	}
	return d, nil
}

func (s *Service) Status(ctx context.Context) (*domain.ServiceStatus, error) {
	return s.repo.GetStatus(ctx)
}

/* ---------- ADMIN ---------- */

func (s *Service) AdminList(ctx context.Context) ([]ServiceSummary, error) {
	services, err := s.repo.ListServices(ctx, repository.ServiceFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]ServiceSummary, 0, len(services))
	for i := range services {
		out = append(out, toSummary(&services[i]))
	}
	return out, nil
}

func (s *Service) CreateService(ctx context.Context, req ServiceRequest) (*domain.Service, error) {
	svc := &domain.Service{}
	if err := applyServiceRequest(svc, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, id int64, req ServiceRequest) (*domain.Service, error) {
	svc, err := s.getService(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyServiceRequest(svc, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, id int64) error {
	return notFound(s.repo.DeleteService(ctx, id))
}

func (s *Service) CreateOption(ctx context.Context, serviceID int64, req OptionRequest) (*domain.ServiceOption, error) {
	if _, err := s.getService(ctx, serviceID); err != nil {
		return nil, err
	}
	o := &domain.ServiceOption{ServiceID: serviceID}
	if err := applyOptionRequest(o, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreateOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateOption edits option id, which must belong to serviceID.
func (s *Service) UpdateOption(ctx context.Context, serviceID, id int64, req OptionRequest) (*domain.ServiceOption, error) {
	o, err := s.getOption(ctx, serviceID, id)
	if err != nil {
		return nil, err
	}
	if err := applyOptionRequest(o, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) DeleteOption(ctx context.Context, serviceID, id int64) error {
	if _, err := s.getOption(ctx, serviceID, id); err != nil {
		return err
	}
	return notFound(s.repo.DeleteOption(ctx, id))
}

func (s *Service) UpdateStatus(ctx context.Context, req StatusRequest) (*domain.ServiceStatus, error) {
	kind := domain.ServiceStatusKind(strings.ToLower(strings.TrimSpace(req.Status)))
	if !kind.Valid() {
		return nil, ErrInvalidStatus
	}
	st := &domain.ServiceStatus{
		Status:    kind,
		Message:   strings.TrimSpace(req.Message),
		UpdatedAt: s.now().UTC(),
	}
	if req.NextAvailable != nil && *req.NextAvailable != "" {
		t, err := parseDateTime(*req.NextAvailable)
		if err != nil {
			return nil, fmt.Errorf("%w: next_available: %v", ErrInvalidDate, err)
		}
		st.NextAvailable = &t
	}
	if err := s.repo.SaveStatus(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) getService(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return svc, nil
}

func (s *Service) getOption(ctx context.Context, serviceID, id int64) (*domain.ServiceOption, error) {
	o, err := s.repo.GetOption(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if o.ServiceID != serviceID {
		return nil, ErrOptionMismatch
	}
	return o, nil
}

func applyServiceRequest(svc *domain.Service, req ServiceRequest) error {
	t := domain.ServiceType(req.Type)
	if !t.Valid() {
		return ErrInvalidType
	}
	from, err := parseDate(req.AvailableFrom)
	if err != nil {
		return fmt.Errorf("%w: available_from: %v", ErrInvalidDate, err)
	}
	to, err := parseDate(req.AvailableTo)
	if err != nil {
		return fmt.Errorf("%w: available_to: %v", ErrInvalidDate, err)
	}

	svc.Name = strings.TrimSpace(req.Name)
	svc.Location = strings.TrimSpace(req.Location)
	svc.Type = t
	svc.Description = strings.TrimSpace(req.Description)
	svc.AvailableFrom, svc.AvailableTo = from, to
	if svc.Validate() != nil {
		return ErrInvalidWindow
	}
	return nil
}

func applyOptionRequest(o *domain.ServiceOption, req OptionRequest) error {
	from, err := parseDate(req.AvailableFrom)
	if err != nil {
		return fmt.Errorf("%w: available_from: %v", ErrInvalidDate, err)
	}
	to, err := parseDate(req.AvailableTo)
	if err != nil {
		return fmt.Errorf("%w: available_to: %v", ErrInvalidDate, err)
	}

	o.Name = strings.TrimSpace(req.Name)
	o.Capacity = req.Capacity
	if o.Capacity <= 0 {
		o.Capacity = 1
	}
	o.Price = req.Price
	o.AvailableFrom, o.AvailableTo = from, to
	if o.Validate() != nil {
		return ErrInvalidWindow
	}
	return nil
}

func parseDateTime(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", dateLayout} {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
