package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/worker"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type OpsHandler struct {
	pinger    Pinger
	expirer   worker.Expirer
	ttl       time.Duration
	batchSize int
}

func NewOpsHandler(pinger Pinger, expirer worker.Expirer, ttl time.Duration, batchSize int) *OpsHandler {
	return &OpsHandler{
		pinger:    pinger,
		expirer:   expirer,
		ttl:       ttl,
		batchSize: batchSize,
	}
}

//
// GET /healthz
//

func (h *OpsHandler) Health(c *gin.Context) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

//
// POST /v1/admin/expire-pending
//

// ExpirePending runs one expiry batch on demand.
func (h *OpsHandler) ExpirePending(c *gin.Context) {
	n, err := h.expirer.ExpireStalePending(c.Request.Context(), h.ttl, h.batchSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ExpireResponse{Expired: n})
}
