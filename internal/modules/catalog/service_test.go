package catalog

import (
	"context"
	"testing"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/pkg/testdb"
	"reservehub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	hotel   *domain.Service
	hostel  *domain.Service
	spa     *domain.Service
	spaSlot domain.ServiceOption
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)

	hotel := testdb.CreateService(t, db, "Grand", domain.ServiceHotel,
		domain.ServiceOption{Name: "Double", Price: 100, Capacity: 2, AvailableFrom: date(2030, 1, 1), AvailableTo: date(2030, 12, 31)},
		domain.ServiceOption{Name: "Suite", Price: 400, Capacity: 4, AvailableFrom: date(2030, 1, 1), AvailableTo: date(2030, 12, 31)},
	)
	hostel := testdb.CreateService(t, db, "Hostel", domain.ServiceHotel)
	spa := testdb.CreateService(t, db, "Calm", domain.ServiceSpa,
		domain.ServiceOption{Name: "Massage", Price: 500, Capacity: 1, AvailableFrom: date(2030, 6, 1), AvailableTo: date(2030, 6, 30)},
	)

	svc := NewService(repository.NewCatalogRepository(db), repository.NewReviewRepository(db), repository.NewMessageRepository(db))
	return &fixture{db: db, svc: svc, hotel: hotel, hostel: hostel, spa: spa, spaSlot: spa.Options[0]}
}

func ids(res *ListResult) []int64 {
	out := make([]int64, 0, len(res.Services))
	for _, s := range res.Services {
		out = append(out, s.ID)
	}
	return out
}

func TestList_NoFilter(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.List(context.Background(), repository.ServiceFilter{}, 0)
	require.NoError(t, err)

	assert.Equal(t, []int64{f.hotel.ID, f.hostel.ID, f.spa.ID}, ids(res))
	assert.Equal(t, []string{"Krakow"}, res.Cities)
	assert.NotNil(t, res.Options)
	assert.Empty(t, res.Options)
	assert.Zero(t, res.UnreadReplies)

	assert.Equal(t, int64(100), res.Services[0].MinPrice)
	assert.Equal(t, 4, res.Services[0].MaxCapacity)
	assert.Equal(t, int64(0), res.Services[1].MinPrice)
}

func TestList_PriceFilterKeepsServicesWithoutOptions(t *testing.T) {
	f := newFixture(t)
	max := int64(200)

	res, err := f.svc.List(context.Background(), repository.ServiceFilter{MaxPrice: &max}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.hotel.ID, f.hostel.ID}, ids(res))
}

func TestList_DateFilter(t *testing.T) {
	f := newFixture(t)
	filter := repository.ServiceFilter{CheckIn: date(2030, 3, 1), CheckOut: date(2030, 3, 5)}

	res, err := f.svc.List(context.Background(), filter, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.hotel.ID}, ids(res))

	filter.Type = domain.ServiceHotel
	res, err = f.svc.List(context.Background(), filter, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.hotel.ID, f.hostel.ID}, ids(res))
	assert.Len(t, res.Options, 2)
}

func TestOptionsByType_RequiresKnownType(t *testing.T) {
	f := newFixture(t)

	for _, typ := range []domain.ServiceType{"", "Castle"} {
		opts, err := f.svc.OptionsByType(context.Background(), typ)
		require.NoError(t, err)
		assert.NotNil(t, opts, "type %q", typ)
		assert.Empty(t, opts, "type %q", typ)
	}

	opts, err := f.svc.OptionsByType(context.Background(), domain.ServiceSpa)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Massage", opts[0].Name)
}

func TestList_OptionFilter(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.List(context.Background(), repository.ServiceFilter{OptionID: f.spaSlot.ID}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.spa.ID}, ids(res))
}

func TestList_UnreadReplies(t *testing.T) {
	f := newFixture(t)
	user := testdb.CreateUser(t, f.db, "reader@example.com", 1000)
	answer := "See you soon"
	require.NoError(t, f.db.Create(&domain.Message{UserID: user.ID, Subject: "Hi", Content: "Welcome", Sender: domain.SenderAdmin}).Error)
	require.NoError(t, f.db.Create(&domain.Message{UserID: user.ID, Subject: "Re", Content: "Update", Sender: domain.SenderAdmin, Response: &answer}).Error)
	require.NoError(t, f.db.Create(&domain.Message{UserID: user.ID, Subject: "Q", Content: "Question", Sender: domain.SenderUser, Response: &answer}).Error)

	res, err := f.svc.List(context.Background(), repository.ServiceFilter{}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UnreadReplies)
}

func TestDetail(t *testing.T) {
	f := newFixture(t)
	user := testdb.CreateUser(t, f.db, "critic@example.com", 1000)
	require.NoError(t, f.db.Create(&domain.Review{UserID: user.ID, ServiceID: f.hotel.ID, Rating: 4, Comment: "Nice"}).Error)

	d, err := f.svc.Detail(context.Background(), f.hotel.ID)
	require.NoError(t, err)

	assert.Equal(t, "Grand", d.Service.Name)
	assert.Len(t, d.Options, 2)
	require.Len(t, d.Reviews, 1)
	assert.Equal(t, "Test User", d.Reviews[0].UserName)
	require.Len(t, d.Availability, 2)
	require.NotNil(t, d.Availability[0].AvailableFrom)
	assert.Equal(t, "2030-01-01", *d.Availability[0].AvailableFrom)
	assert.Equal(t, "2030-12-31", *d.Availability[0].AvailableTo)

	_, err = f.svc.Detail(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminServiceAndOptionCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateService(ctx, ServiceRequest{Name: "X", Location: "Gdansk", Type: "Castle"})
	assert.ErrorIs(t, err, ErrInvalidType)

	from, to := "2030-02-01", "2030-01-01"
	_, err = f.svc.CreateService(ctx, ServiceRequest{Name: "X", Location: "Gdansk", Type: "Tour", AvailableFrom: &from, AvailableTo: &to})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	bad := "01/02/2030"
	_, err = f.svc.CreateService(ctx, ServiceRequest{Name: "X", Location: "Gdansk", Type: "Tour", AvailableFrom: &bad})
	assert.ErrorIs(t, err, ErrInvalidDate)

	svc, err := f.svc.CreateService(ctx, ServiceRequest{Name: " Old Town Walk ", Location: "Gdansk", Type: "Tour"})
	require.NoError(t, err)
	assert.Equal(t, "Old Town Walk", svc.Name)

	opt, err := f.svc.CreateOption(ctx, svc.ID, OptionRequest{Name: "Group", Price: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, opt.Capacity)

	_, err = f.svc.UpdateOption(ctx, f.hotel.ID, opt.ID, OptionRequest{Name: "Moved", Price: 1})
	assert.ErrorIs(t, err, ErrOptionMismatch)

	opt, err = f.svc.UpdateOption(ctx, svc.ID, opt.ID, OptionRequest{Name: "Private", Price: 90, Capacity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(90), opt.Price)

	updated, err := f.svc.UpdateService(ctx, svc.ID, ServiceRequest{Name: "Night Walk", Location: "Gdansk", Type: "Tour"})
	require.NoError(t, err)
	assert.Equal(t, "Night Walk", updated.Name)

	require.NoError(t, f.svc.DeleteOption(ctx, svc.ID, opt.ID))
	assert.ErrorIs(t, f.svc.DeleteOption(ctx, svc.ID, opt.ID), ErrNotFound)

	require.NoError(t, f.svc.DeleteService(ctx, svc.ID))
	assert.ErrorIs(t, f.svc.DeleteService(ctx, svc.ID), ErrNotFound)
}

func TestDeleteOptionDetachesReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testdb.CreateUser(t, f.db, "guest@example.com", 1000)

	optionID := f.spaSlot.ID
	res := &domain.Reservation{
		UserID: user.ID, OptionID: &optionID, ServiceName: "Calm", ServiceType: domain.ServiceSpa,
		Start: time.Date(2030, 6, 2, 10, 0, 0, 0, time.UTC), Status: domain.ReservationPending, Price: 500,
	}
	require.NoError(t, f.db.Omit("User", "Option").Create(res).Error)

	require.NoError(t, f.svc.DeleteOption(ctx, f.spa.ID, optionID))

	var got domain.Reservation
	require.NoError(t, f.db.First(&got, res.ID).Error)
	assert.Nil(t, got.OptionID)
	assert.Equal(t, "Calm", got.ServiceName)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOperational, st.Status)

	_, err = f.svc.UpdateStatus(ctx, StatusRequest{Status: "sleeping"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	next := "2030-01-01T09:00"
	_, err = f.svc.UpdateStatus(ctx, StatusRequest{Status: "Maintenance", Message: "Upgrading", NextAvailable: &next})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, StatusRequest{Status: "down", Message: "Outage"})
	require.NoError(t, err)

	st, err = f.svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDown, st.Status)
	assert.Equal(t, "Outage", st.Message)
	assert.Nil(t, st.NextAvailable)

	var count int64
	require.NoError(t, f.db.Model(&domain.ServiceStatus{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
