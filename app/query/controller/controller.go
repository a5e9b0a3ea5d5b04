package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/votascan/votascan/pkg/db/rounds"
	"go.uber.org/zap"
)

// Controller serves the read-only query API over the entity store.
type Controller struct {
	Store  rounds.Store
	Logger *zap.Logger
}

// New returns a new controller.
func New(store rounds.Store, logger *zap.Logger) *Controller {
	return &Controller{Store: store, Logger: logger}
}

// NewRouter returns the router with all query routes.
func (c *Controller) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", c.HandleHealth).Methods("GET")
	r.HandleFunc("/progress", c.HandleProgress).Methods("GET")
	r.HandleFunc("/rounds", c.ListRounds).Methods("GET")
	r.HandleFunc("/rounds/{address}", c.GetRound).Methods("GET")
	r.HandleFunc("/rounds/{address}/txs", c.ListRoundTransactions).Methods("GET")

	return r
}

func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := c.Store.LatestHeight(r.Context()); err != nil {
		c.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "errored", "error": "store connection error"})
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleProgress reports the ingestion watermark.
func (c *Controller) HandleProgress(w http.ResponseWriter, r *http.Request) {
	height, err := c.Store.LatestHeight(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]uint64{"height": height})
}

func (c *Controller) ListRounds(w http.ResponseWriter, r *http.Request) {
	list, err := c.Store.ListRounds(r.Context(), limitParam(r, 100))
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, list)
}

func (c *Controller) GetRound(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	round, err := c.Store.GetRound(r.Context(), address)
	if err != nil {
		c.writeError(w, err)
		return
	}
	if round == nil {
		c.writeJSON(w, http.StatusNotFound, map[string]string{"error": "round not found"})
		return
	}
	c.writeJSON(w, http.StatusOK, round)
}

func (c *Controller) ListRoundTransactions(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	txs, err := c.Store.ListTransactionsByContract(r.Context(), address, limitParam(r, 100))
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, txs)
}

func limitParam(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 1000 {
		return def
	}
	return n
}

func (c *Controller) writeError(w http.ResponseWriter, err error) {
	c.Logger.Error("Query failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (c *Controller) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
