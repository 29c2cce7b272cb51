// Package waittime serves a simulated live wait-time estimate per doctor.
// There is no queue integration yet; estimates are random within a fixed
// band, matching what the front desk quotes today.
package waittime

import (
	"fmt"
	"math/rand"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	minWaitMinutes = 5
	maxWaitMinutes = 45
)

// Estimator produces wait-time estimates. Safe for concurrent use.
type Estimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewEstimator(seed int64) *Estimator {
	return &Estimator{rng: rand.New(rand.NewSource(seed))}
}

// Estimate returns a wait in whole minutes within [5, 45].
func (e *Estimator) Estimate() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return minWaitMinutes + e.rng.Intn(maxWaitMinutes-minWaitMinutes+1)
}

type Handler struct {
	est *Estimator
}

func NewHandler(est *Estimator) *Handler {
	return &Handler{est: est}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/wait-time/:doctorId", h.GetWaitTime)
}

func (h *Handler) GetWaitTime(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctorId")
	}

	minutes := h.est.Estimate()
	return c.JSON(http.StatusOK, map[string]string{
		"doctor_id": doctorID.String(),
		"wait_time": fmt.Sprintf("%d minutes", minutes),
	})
}
