package http

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/ValentinKolb/zKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger(common.LoggerTransport)

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handler transport.ServerHandleFunc
	config  common.ServerConfig
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	t.config = config

	timeout := time.Duration(config.TimeoutSecond) * time.Second
	srv := &http.Server{
		Addr:         config.Endpoint,
		Handler:      NewHandler(t.handler, config.LogLevel == "debug"),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	Logger.Infof("Starting HTTP server on %s", config.Endpoint)
	return srv.ListenAndServe()
}

// NewHandler returns the http.Handler serving "POST /{shardId}" with the given handle func.
// If debug is set every request is logged.
func NewHandler(handler transport.ServerHandleFunc, debug bool) http.Handler {
	mux := http.NewServeMux()
	h := handleRequest(handler)
	if debug {
		h = loggerMiddleware(h)
	}
	mux.HandleFunc("POST /{shardId}", h)
	return mux
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleRequest handles incoming HTTP requests and writes the response to the writer
func handleRequest(handler transport.ServerHandleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shardId, err := strconv.ParseUint(r.PathValue("shardId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid shardId", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}

		resp := handler(shardId, body)

		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err = w.Write(resp); err != nil {
			Logger.Warningf("failed to write response for shard %d: %v", shardId, err)
		}
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}
