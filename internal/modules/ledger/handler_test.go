package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservehub/internal/domain"
	"reservehub/internal/pkg/testdb"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *Service, *domain.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	u := testdb.CreateUser(t, db, "history@example.com", 1000)
	svc := NewService(db)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-User-ID") != "" {
			c.Set("user_id", u.ID)
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, svc, u
}

func TestListMyTransactions_Unauthorized(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/users/me/transactions", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListMyTransactions(t *testing.T) {
	r, svc, u := setupTestRouter(t)
	_, err := svc.Debit(context.Background(), Entry{UserID: u.ID, Amount: 100, Kind: domain.TxReservationDebit})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/transactions", nil)
	req.Header.Set("X-Test-User-ID", "1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Balance      int64 `json:"balance"`
			Total        int64 `json:"total"`
			Transactions []struct {
				Amount int64  `json:"amount"`
				Kind   string `json:"kind"`
			} `json:"transactions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(900), body.Data.Balance)
	assert.Equal(t, int64(1), body.Data.Total)
	require.Len(t, body.Data.Transactions, 1)
	assert.Equal(t, int64(-100), body.Data.Transactions[0].Amount)
	assert.Equal(t, "reservation_debit", body.Data.Transactions[0].Kind)
}
