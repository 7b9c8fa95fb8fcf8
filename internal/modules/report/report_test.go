package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/pkg/testdb"
	"reservehub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	user := testdb.CreateUser(t, db, "guest@example.com", 1000)
	testdb.CreateUser(t, db, "idle@example.com", 1000)

	hotel := testdb.CreateService(t, db, "Grand", domain.ServiceHotel, domain.ServiceOption{Name: "Double", Price: 100})
	spa := testdb.CreateService(t, db, "Calm", domain.ServiceSpa,
		domain.ServiceOption{Name: "Massage", Price: 50},
		domain.ServiceOption{Name: "Sauna", Price: 30},
	)

	book := func(option domain.ServiceOption, name string, price int64, status domain.ReservationStatus) {
		id := option.ID
		res := &domain.Reservation{
			UserID: user.ID, OptionID: &id, ServiceName: name, ServiceType: domain.ServiceSpa,
			Start: time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC), Status: status, Price: price,
		}
		require.NoError(t, db.Omit("User", "Option").Create(res).Error)
	}
	book(hotel.Options[0], "Grand", 300, domain.ReservationConfirmed)
	book(spa.Options[0], "Calm", 50, domain.ReservationPending)
	book(spa.Options[1], "Calm", 30, domain.ReservationCancelled)

	require.NoError(t, db.Create(&domain.Review{UserID: user.ID, ServiceID: spa.ID, Rating: 5, Comment: "Great"}).Error)
}

func newService(t *testing.T) *Service {
	t.Helper()
	db := testdb.Open(t)
	seed(t, db)
	svc := NewService(repository.NewReportRepository(db))
	svc.now = func() time.Time { return time.Date(2030, 3, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestSummary(t *testing.T) {
	svc := newService(t)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), sum.TotalReservations)
	assert.Equal(t, int64(1), sum.TotalReviews)
	assert.Equal(t, int64(380), sum.TotalRevenue)
	assert.Equal(t, int64(2), sum.TotalUsers)
	assert.Equal(t, "Calm", sum.MostPopularService)
	assert.Equal(t, int64(2), sum.MostPopularServiceCount)
	assert.Equal(t, int64(1), sum.ReservationsByStatus[domain.ReservationConfirmed])
	assert.Equal(t, int64(1), sum.ReservationsByStatus[domain.ReservationCancelled])
}

func TestSummary_Empty(t *testing.T) {
	svc := NewService(repository.NewReportRepository(testdb.Open(t)))

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, noData, sum.MostPopularService)
	assert.Zero(t, sum.MostPopularServiceCount)
	assert.Zero(t, sum.TotalRevenue)
}

func TestWriteCSV(t *testing.T) {
	sum := &Summary{TotalReservations: 3, TotalReviews: 1, TotalRevenue: 380, TotalUsers: 2, MostPopularService: "Calm; Spa", MostPopularServiceCount: 2}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sum))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, utf8BOM))

	r := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):]))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// encoding/csv skips the blank line
	require.Len(t, records, 8)
	assert.Equal(t, []string{title}, records[0])
	assert.Equal(t, []string{"Statistic", "Value"}, records[1])
	assert.Equal(t, []string{"Revenue (points)", "380.00"}, records[4])
	assert.Equal(t, []string{"Most popular service", "Calm; Spa"}, records[6])
	assert.Contains(t, buf.String(), "\n\n")
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, &Summary{MostPopularService: "Calm", GeneratedAt: time.Now()}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestHandlerExports(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(newService(t)).RegisterAdminRoutes(r.Group("/admin"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/reports/summary", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_revenue":380`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/reports/summary.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "data_summary.csv")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), utf8BOM))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/reports/summary.pdf", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}
