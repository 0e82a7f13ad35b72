package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/lib/store"
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger(common.LoggerAPI)

// maxBodyBytes limits the size of request bodies
const maxBodyBytes = 32 << 20

// Request bodies use pointer fields so a missing field can be told apart
// from a zero value. All fields are required.

// KeyValueRequest is the body of POST /add and one entry of POST /batch
type KeyValueRequest struct {
	Key   *string `json:"key"`
	Value *string `json:"value"`
}

// ZAddRequest is the body of POST /zadd/{key}
type ZAddRequest struct {
	Value *string       `json:"value"`
	Score *common.Float `json:"score"`
}

// ZRangeRequest is the body of POST /zrange/{key}
type ZRangeRequest struct {
	MinScore *common.Float `json:"min_score"`
	MaxScore *common.Float `json:"max_score"`
}

// BatchRequest is the body of POST /batch
type BatchRequest []KeyValueRequest

func (r *KeyValueRequest) validate() error {
	switch {
	case r.Key == nil:
		return errMissingField("key")
	case r.Value == nil:
		return errMissingField("value")
	}
	return nil
}

func (r *ZAddRequest) validate() error {
	switch {
	case r.Value == nil:
		return errMissingField("value")
	case r.Score == nil:
		return errMissingField("score")
	}
	return nil
}

func (r *ZRangeRequest) validate() error {
	switch {
	case r.MinScore == nil:
		return errMissingField("min_score")
	case r.MaxScore == nil:
		return errMissingField("max_score")
	}
	return nil
}

func (r *BatchRequest) validate() error {
	for i := range *r {
		if err := (*r)[i].validate(); err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
	}
	return nil
}

func errMissingField(name string) error {
	return errors.Newf("missing field %q", name)
}

// ScoreValue is one entry of the response of POST /zrange/{key}
type ScoreValue struct {
	Score common.Float `json:"score"`
	Value string       `json:"value"`
}

// ListenAndServe serves the REST API for s on addr. It blocks until the server stops.
func ListenAndServe(addr string, s store.IStore, timeout time.Duration, debug bool) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewHandler(s, debug),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	Logger.Infof("Starting REST API on %s", addr)
	return srv.ListenAndServe()
}

// NewHandler returns the http.Handler of the REST API backed by s.
// If debug is set every request is logged.
func NewHandler(s store.IStore, debug bool) http.Handler {
	h := &handler{store: s, debug: debug}
	mux := http.NewServeMux()

	h.route(mux, "GET /init", "init", h.init)
	h.route(mux, "GET /query/{key}", "query", h.query)
	h.route(mux, "GET /del/{key}", "del", h.del)
	h.route(mux, "POST /add", "add", h.add)
	h.route(mux, "POST /batch", "batch", h.batch)
	h.route(mux, "POST /list", "list", h.list)
	h.route(mux, "POST /zadd/{key}", "zadd", h.zadd)
	h.route(mux, "POST /zrange/{key}", "zrange", h.zrange)
	h.route(mux, "GET /zrmv/{key}/{value}", "zrmv", h.zrmv)
	h.route(mux, "GET /zscore/{key}/{value}", "zscore", h.zscore)
	h.route(mux, "GET /zcard/{key}", "zcard", h.zcard)
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return mux
}

type handler struct {
	store store.IStore
	debug bool
}

// --------------------------------------------------------------------------
// Routes
// --------------------------------------------------------------------------

func (h *handler) init(w http.ResponseWriter, r *http.Request) {
	writeText(w, "ok")
}

func (h *handler) query(w http.ResponseWriter, r *http.Request) {
	value, ok, err := h.store.Get(r.PathValue("key"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !ok {
		notFound(w)
		return
	}
	writeText(w, value)
}

func (h *handler) del(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("key")); err != nil {
		writeStoreError(w, err)
	}
}

func (h *handler) add(w http.ResponseWriter, r *http.Request) {
	var req KeyValueRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.store.Put(*req.Key, *req.Value); err != nil {
		writeStoreError(w, err)
	}
}

func (h *handler) batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !readJSON(w, r, &req) {
		return
	}
	entries := make([]db.KeyValue, len(req))
	for i, e := range req {
		entries[i] = db.KeyValue{Key: *e.Key, Value: *e.Value}
	}
	if err := h.store.BatchPut(entries); err != nil {
		writeStoreError(w, err)
	}
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	var keys []string
	if !readJSON(w, r, &keys) {
		return
	}
	entries, err := h.store.ListGet(keys)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(entries) == 0 {
		notFound(w)
		return
	}
	writeJSON(w, entries)
}

func (h *handler) zadd(w http.ResponseWriter, r *http.Request) {
	var req ZAddRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.store.ZAdd(r.PathValue("key"), *req.Value, float64(*req.Score)); err != nil {
		writeStoreError(w, err)
	}
}

func (h *handler) zrange(w http.ResponseWriter, r *http.Request) {
	var req ZRangeRequest
	if !readJSON(w, r, &req) {
		return
	}
	members, err := h.store.ZRange(r.PathValue("key"), float64(*req.MinScore), float64(*req.MaxScore))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(members) == 0 {
		notFound(w)
		return
	}
	resp := make([]ScoreValue, len(members))
	for i, m := range members {
		resp[i] = ScoreValue{Score: common.Float(m.Score), Value: m.Member}
	}
	writeJSON(w, resp)
}

func (h *handler) zrmv(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ZRemove(r.PathValue("key"), r.PathValue("value")); err != nil {
		writeStoreError(w, err)
	}
}

func (h *handler) zscore(w http.ResponseWriter, r *http.Request) {
	score, ok, err := h.store.ZScore(r.PathValue("key"), r.PathValue("value"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !ok {
		notFound(w)
		return
	}
	writeText(w, common.FormatScore(score))
}

func (h *handler) zcard(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.ZCard(r.PathValue("key"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeText(w, strconv.Itoa(count))
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// route registers fn under pattern and records per route metrics
func (h *handler) route(mux *http.ServeMux, pattern, name string, fn http.HandlerFunc) {
	duration := metrics.GetOrCreateHistogram(fmt.Sprintf(`zkv_api_request_duration_seconds{route=%q}`, name))

	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		fn(rw, r)

		duration.UpdateDuration(start)
		metrics.GetOrCreateCounter(fmt.Sprintf(`zkv_api_requests_total{route=%q,status="%d"}`, name, rw.statusCode)).Inc()
		if h.debug {
			Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
		}
	})
}

// statusWriter captures the status code of a response
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// validator is implemented by request bodies with required fields
type validator interface {
	validate() error
}

// readJSON decodes the request body into v and validates it if v is a validator.
// On failure it answers with 400 and returns false.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	if req, ok := v.(validator); ok {
		if err := req.validate(); err != nil {
			http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		Logger.Warningf("failed to write response: %v", err)
	}
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, s); err != nil {
		Logger.Warningf("failed to write response: %v", err)
	}
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}

// writeStoreError maps store return codes to http status codes
func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch store.CodeOf(err) {
	case store.RetCInvalidScore, store.RetCInvalidOperation:
		status = http.StatusBadRequest
	case store.RetCUnsupportedOperation:
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		Logger.Errorf("store error: %v", err)
	}
	http.Error(w, err.Error(), status)
}
