package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	httputil "pgstay/pkg/http"
	"pgstay/pkg/logger"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

type HealthHandler struct {
	mongoClient *mongo.Client
	redisClient *redis.Client
	log         *logger.Logger
}

func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		mongoClient: mongoClient,
		redisClient: redisClient,
		log:         log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

// Ready probes the dependencies a request actually needs. Mongo down
// means not ready; Redis down is degraded but still ready, the cache is
// a read optimization only.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ready", Database: "ok", Cache: "ok"}

	if err := h.mongoClient.Ping(ctx, nil); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		resp.Status = "unavailable"
		resp.Database = "error"
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, resp); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			h.log.Warn("Cache health check failed", "error", err)
			resp.Cache = "error"
		}
	}

	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
