package proxy

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
	"github.com/remote-vehicle/vehicle-gateway/pkg/maps"
	"github.com/remote-vehicle/vehicle-gateway/pkg/metrics"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
	"github.com/remote-vehicle/vehicle-gateway/pkg/vehicle"
)

const maxRequestBodyBytes = 4096

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// vehicleButtons lists the commands offered for each vehicle on the HTML vehicle list.
var vehicleButtons = []string{
	CommandCheckDoors,
	CommandLockDoors,
	CommandUnlockDoors,
	CommandStartEngine,
	CommandStopEngine,
	CommandHazardLightsOn,
	CommandHazardLightsOff,
}

// Proxy exposes an HTTP API for sending vehicle commands.
type Proxy struct {
	dispatcher *Dispatcher
	extractor  *maps.Extractor
	handler    http.Handler
}

// New creates an http proxy. If extractor is nil, map links are resolved with a default
// [maps.Extractor].
func New(dispatcher *Dispatcher, extractor *maps.Extractor) *Proxy {
	if extractor == nil {
		extractor = &maps.Extractor{}
	}
	p := &Proxy{
		dispatcher: dispatcher,
		extractor:  extractor,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", p.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/vehicles_html", p.handleVehiclesHTML).Methods(http.MethodGet)
	for _, command := range Commands {
		router.HandleFunc("/"+command, p.commandHandler(command)).Methods(http.MethodPost)
	}
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeText(w, http.StatusNotFound, http.StatusText(http.StatusNotFound)+"\n")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeText(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)+"\n")
	})

	p.handler = logRequests(router)
	return p
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.handler.ServeHTTP(w, req)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		log.Info("%s %s -> %d (%s)", req.Method, req.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		log.Error("Error serializing reply %+v: %s", value, err)
		writeText(w, http.StatusInternalServerError, "internal server error\n")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(append(jsonBytes, '\n'))
}

// writeResult sends strings as plain text and everything else as JSON.
func writeResult(w http.ResponseWriter, result interface{}) {
	if text, ok := result.(string); ok {
		writeText(w, http.StatusOK, text)
		return
	}
	writeJSON(w, result)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// statusCode maps an error to the HTTP status returned to clients.
func statusCode(err error) int {
	switch {
	case errors.Is(err, protocol.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, protocol.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, protocol.ErrUnsupportedLink):
		return http.StatusOK
	case isTimeout(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, protocol.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if errors.Is(err, protocol.ErrUnsupportedLink) {
		log.Info("Rejected map link: %s", err)
		writeText(w, code, protocol.ErrUnsupportedLink.Error())
		return
	}
	log.Error("Returning error %s: %s", http.StatusText(code), err)
	writeText(w, code, err.Error()+"\n")
}

// readParameters decodes the JSON request body. An empty body yields empty parameters.
func readParameters(w http.ResponseWriter, req *http.Request) (RequestParameters, error) {
	params := RequestParameters{}
	if req.Body == nil {
		return params, nil
	}
	defer req.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxRequestBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, protocol.NewValidationError("request body exceeds %d bytes", maxRequestBodyBytes)
		}
		return nil, protocol.NewValidationError("could not read request body: %s", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(body, &params); err != nil {
		return nil, protocol.NewValidationError("error occurred while parsing request parameters: %s", err)
	}
	if params == nil {
		// Body was the JSON literal null.
		params = RequestParameters{}
	}
	return params, nil
}

func (p *Proxy) commandHandler(command string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		params, err := readParameters(w, req)
		if err != nil {
			writeError(w, err)
			return
		}
		region, err := params.Region()
		if err != nil {
			writeError(w, err)
			return
		}
		action, err := ExtractCommandAction(req.Context(), command, params, p.extractor)
		if err != nil {
			writeError(w, err)
			return
		}
		result, err := p.dispatcher.Execute(req.Context(), command, region, action)
		if err != nil {
			writeError(w, err)
			return
		}
		writeResult(w, result)
	}
}

func handleHealth(w http.ResponseWriter, req *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (p *Proxy) renderHTML(w http.ResponseWriter, name string, data interface{}) {
	var page bytes.Buffer
	if err := templates.ExecuteTemplate(&page, name, data); err != nil {
		writeError(w, fmt.Errorf("rendering %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page.Bytes())
}

func (p *Proxy) handleIndex(w http.ResponseWriter, req *http.Request) {
	p.renderHTML(w, "index.html", struct {
		Regions       []protocol.Region
		DefaultRegion protocol.Region
	}{
		Regions:       protocol.Regions(),
		DefaultRegion: p.dispatcher.Account().DefaultRegion(),
	})
}

func (p *Proxy) handleVehiclesHTML(w http.ResponseWriter, req *http.Request) {
	requested := req.URL.Query().Get("region")
	region, err := p.dispatcher.Account().ResolveRegion(requested)
	if err != nil {
		writeError(w, err)
		return
	}
	action, err := ExtractCommandAction(req.Context(), CommandGetVehicles, nil, p.extractor)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := p.dispatcher.Execute(req.Context(), CommandGetVehicles, string(region), action)
	if err != nil {
		writeError(w, err)
		return
	}
	vehicles, _ := result.([]vehicle.Summary)
	p.renderHTML(w, "vehicle.html", struct {
		Region   protocol.Region
		Vehicles []vehicle.Summary
		Commands []string
	}{
		Region:   region,
		Vehicles: vehicles,
		Commands: vehicleButtons,
	})
}
