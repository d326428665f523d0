package controllers

import (
	"errors"
	"fcd/internal/models"
	"fcd/internal/providers"
	"fcd/internal/services"
	"fcd/internal/torn"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.ChainServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.ChainServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

type chainListResponse struct {
	Chains   []*models.ChainRecord `json:"chains"`
	Archived []int64               `json:"archived"`
}

type errorResponse struct {
	Error        string `json:"error"`
	KeyDiscarded bool   `json:"key_discarded,omitempty"`
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func writeJson(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// writeSyncError maps engine errors onto the HTTP surface. A rejected
// credential carries the discard flag so the caller knows the stored key is
// gone.
func (ac *ApiController) writeSyncError(w http.ResponseWriter, err error) {
	var apiErr *torn.ApiError
	switch {
	case errors.Is(err, services.ErrNoApiKey):
		writeJson(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrNoActiveChain):
		writeJson(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &apiErr) && apiErr.InvalidKey():
		writeJson(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), KeyDiscarded: true})
	default:
		writeJson(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}

func (ac *ApiController) GetChain(w http.ResponseWriter, r *http.Request) {
	rawId := r.URL.Query().Get("id")
	if rawId == "" {
		record, ok := ac.service.LatestChain()
		if !ok {
			writeJson(w, http.StatusNotFound, errorResponse{Error: "no chains tracked yet"})
			return
		}
		writeJson(w, http.StatusOK, record)
		return
	}

	id, err := strconv.ParseInt(rawId, 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// A miss is not cached: an unknown id may appear on the next sync.
	cacheKey := "chain:" + rawId
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	record, ok := ac.service.GetChain(id)
	if !ok {
		writeJson(w, http.StatusNotFound, errorResponse{Error: "chain not found"})
		return
	}

	gson, err := json.Marshal(record)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetChains(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "chains", func() (any, error) {
		return chainListResponse{
			Chains:   ac.service.ListChains(),
			Archived: ac.service.ListArchivedIds(),
		}, nil
	})
}

func (ac *ApiController) Sync(w http.ResponseWriter, r *http.Request) {
	record, err := ac.service.SyncNow(r.Context())
	if err != nil {
		ac.logger.Errorf(providers.TypeSync, "Manual sync failed: %s", err)
		ac.writeSyncError(w, err)
		return
	}
	writeJson(w, http.StatusOK, record)
}

func (ac *ApiController) ImportChain(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	record, err := ac.service.ImportChain(r.Context(), id)
	if err != nil {
		ac.logger.Errorf(providers.TypeSync, "Import of chain %d failed: %s", id, err)
		ac.writeSyncError(w, err)
		return
	}
	writeJson(w, http.StatusOK, record)
}

func (ac *ApiController) GetRemoteChains(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	before, _ := strconv.ParseInt(r.URL.Query().Get("before"), 10, 64)

	page, err := ac.service.ListRemoteChains(r.Context(), limit, before)
	if err != nil {
		ac.writeSyncError(w, err)
		return
	}
	writeJson(w, http.StatusOK, page)
}

func (ac *ApiController) SetKey(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Key == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.service.SetApiKey(payload.Key)
	w.WriteHeader(http.StatusCreated)
}

func (ac *ApiController) DeleteKey(w http.ResponseWriter, r *http.Request) {
	ac.service.ClearApiKey()
	w.WriteHeader(http.StatusNoContent)
}
