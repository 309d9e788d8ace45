// Package api routes aggregator requests independently of the transport.
// The HTTP server and the Lambda adapter both translate their native request
// shape into a Request and render the returned Response, so the routing and
// endpoint semantics live in exactly one place.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marseille-outings-aggregator/internal/models"
	"marseille-outings-aggregator/internal/services"
)

// suggestionDefaults for the /suggestions endpoint.
const (
	suggestionDefaultLimit = 3
	suggestionMaxLimit     = 10
	suggestionPoolSize     = 50
)

// topSuggestions is the fixed result size of the preference-scored query;
// scoredPoolLimit bounds the candidate select feeding it.
const (
	topSuggestions  = 5
	scoredPoolLimit = 200
)

// Request is the transport-neutral request shape.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// Response is the transport-neutral response shape. Body is already
// serialized JSON.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// ResponseBody is the uniform JSON envelope for every endpoint.
type ResponseBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// corsHeaders are attached to every response, preflight included.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,Authorization,apikey",
	"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
	"Content-Type":                 "application/json",
}

// Handler owns the endpoint implementations.
type Handler struct {
	pipeline *services.Pipeline
	store    *services.StoreClient
	shotgun  *services.ShotgunClient
}

// NewHandler wires the handler over the shared service clients.
func NewHandler(pipeline *services.Pipeline, store *services.StoreClient, shotgun *services.ShotgunClient) *Handler {
	return &Handler{pipeline: pipeline, store: store, shotgun: shotgun}
}

// Handle routes one request. Panics inside endpoint code are converted into
// a 500 so a malformed page or payload can never kill the process.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	if req.Method == "OPTIONS" {
		return Response{StatusCode: 200, Headers: corsHeaders, Body: nil}
	}

	log.Printf("api: %s %s", req.Method, req.Path)

	payload, err := services.RunIsolated("handler", func() (Response, error) {
		return h.route(ctx, req), nil
	})
	if err != nil {
		log.Printf("api: %s %s: %v", req.Method, req.Path, err)
		return errorResponse(500, "internal error", err)
	}
	return payload
}

func (h *Handler) route(ctx context.Context, req Request) Response {
	path := strings.TrimRight(req.Path, "/")
	if path == "" {
		path = "/"
	}

	switch {
	case req.Method == "POST" && path == "/update-outings":
		return h.handleUpdate(ctx)
	case req.Method == "POST" && path == "/shotgun-proxy":
		return h.handleShotgunProxy(ctx, req.Body)
	case req.Method == "GET" && path == "/suggestions":
		return h.handleSuggestions(ctx, req.Query)
	case req.Method == "GET" && path == "/healthz":
		return jsonResponse(200, ResponseBody{Success: true, Message: "ok"})
	case req.Method == "GET" && path == "/":
		if userID := req.Query.Get("user_id"); userID != "" {
			return h.handleScoredQuery(ctx, userID)
		}
		return h.handleDebugSweep(ctx)
	default:
		return errorResponse(404, "not found", fmt.Errorf("no route for %s %s", req.Method, req.Path))
	}
}

// handleUpdate runs the full aggregation pipeline and returns its report.
// The run itself never fails; per-source and store failures are inside the
// report's error map.
func (h *Handler) handleUpdate(ctx context.Context) Response {
	report := h.pipeline.Run(ctx)
	message := fmt.Sprintf("aggregated %d outings (%d stored)", report.TotalNormalized, report.InsertedCount)
	return jsonResponse(200, ResponseBody{Success: true, Message: message, Data: report})
}

type shotgunProxyRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// handleShotgunProxy forwards a search to the structured event API and
// returns its response body untouched, so browser clients can query it
// without tripping over its CORS policy.
func (h *Handler) handleShotgunProxy(ctx context.Context, body []byte) Response {
	proxyReq := shotgunProxyRequest{Query: "marseille", Limit: 20}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &proxyReq); err != nil {
			return errorResponse(400, "invalid request body", err)
		}
	}
	if proxyReq.Query == "" {
		proxyReq.Query = "marseille"
	}
	if proxyReq.Limit < 1 || proxyReq.Limit > 100 {
		proxyReq.Limit = 20
	}

	raw, err := h.shotgun.SearchRaw(ctx, proxyReq.Query, proxyReq.Limit)
	if err != nil {
		return errorResponse(502, "upstream search failed", err)
	}
	return Response{StatusCode: 200, Headers: corsHeaders, Body: raw}
}

// handleSuggestions returns a small random sample of upcoming outings,
// optionally narrowed to the requested categories.
func (h *Handler) handleSuggestions(ctx context.Context, query url.Values) Response {
	// Numeric limits clamp into range; non-numeric input keeps the default.
	limit := suggestionDefaultLimit
	if s := query.Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			if v < 1 {
				v = 1
			}
			if v > suggestionMaxLimit {
				v = suggestionMaxLimit
			}
			limit = v
		}
	}

	var wantCats []string
	if s := query.Get("cats"); s != "" {
		for _, c := range strings.Split(s, ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				wantCats = append(wantCats, c)
			}
		}
	}

	rows, err := h.store.FetchOutings(ctx, services.OutingQuery{
		FromDate: time.Now().Format("2006-01-02"),
		Limit:    suggestionPoolSize,
		OrderAsc: true,
	})
	if err != nil {
		return storeErrorResponse(err)
	}

	pool := rows
	if len(wantCats) > 0 {
		pool = pool[:0]
		for _, row := range rows {
			if categoriesMatch(row.Categories, wantCats) {
				pool = append(pool, row)
			}
		}
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > limit {
		pool = pool[:limit]
	}

	return jsonResponse(200, ResponseBody{
		Success: true,
		Message: fmt.Sprintf("%d suggestions", len(pool)),
		Data:    pool,
	})
}

// scoredQueryData is the payload of the preference-scored query: the
// suggestions plus the profile that produced them, so clients can show
// which preferences applied, and the total number of events that passed the
// filter before the top-5 cut.
type scoredQueryData struct {
	Preferences    models.PreferenceProfile `json:"preferences"`
	Suggestions    []models.OutingRecord    `json:"suggestions"`
	TotalAvailable int                      `json:"total_available"`
}

// handleScoredQuery filters and ranks upcoming outings against the user's
// stored preference profile, falling back to the documented defaults when
// the user has none.
func (h *Handler) handleScoredQuery(ctx context.Context, userID string) Response {
	prefs := models.DefaultPreferences()
	stored, err := h.store.FetchPreferences(ctx, userID)
	switch {
	case err == services.ErrMissingCredentials:
		return storeErrorResponse(err)
	case err != nil:
		log.Printf("api: preferences for %s unavailable, using defaults: %v", userID, err)
	case stored != nil:
		prefs = *stored
	}

	rows, err := h.store.FetchOutings(ctx, services.OutingQuery{
		FromDate: time.Now().Format("2006-01-02"),
		Limit:    scoredPoolLimit,
		OrderAsc: true,
	})
	if err != nil {
		return storeErrorResponse(err)
	}

	top, total := services.FilterAndScore(rows, prefs, topSuggestions, time.Now())
	return jsonResponse(200, ResponseBody{
		Success: true,
		Message: fmt.Sprintf("%d suggestions for %s", len(top), userID),
		Data:    scoredQueryData{Preferences: prefs, Suggestions: top, TotalAvailable: total},
	})
}

// debugSweepDataLimit caps the candidate sample echoed by the debug sweep;
// total still reports the full deduplicated count.
const debugSweepDataLimit = 20

// debugSweepBody is the root endpoint's extraction-only response shape.
type debugSweepBody struct {
	Success bool                  `json:"success"`
	Total   int                   `json:"total"`
	Data    []models.RawCandidate `json:"data"`
}

// handleDebugSweep exposes the low-recall link sweep for inspection.
func (h *Handler) handleDebugSweep(ctx context.Context) Response {
	items := h.pipeline.DebugSweep(ctx)
	total := len(items)
	if total > debugSweepDataLimit {
		items = items[:debugSweepDataLimit]
	}
	data, err := json.Marshal(debugSweepBody{Success: true, Total: total, Data: items})
	if err != nil {
		return errorResponse(500, "response encoding failed", err)
	}
	return Response{StatusCode: 200, Headers: corsHeaders, Body: data}
}

func categoriesMatch(have, want []string) bool {
	for _, h := range have {
		h = strings.ToLower(h)
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func jsonResponse(status int, body ResponseBody) Response {
	data, err := json.Marshal(body)
	if err != nil {
		data = []byte(`{"success":false,"error":"response encoding failed"}`)
		status = 500
	}
	return Response{StatusCode: status, Headers: corsHeaders, Body: data}
}

func errorResponse(status int, message string, err error) Response {
	return jsonResponse(status, ResponseBody{Success: false, Message: message, Error: err.Error()})
}

// storeErrorResponse maps store failures: a missing credential is a
// deliberate configuration state reported as 503, everything else is a 502.
func storeErrorResponse(err error) Response {
	if err == services.ErrMissingCredentials {
		return errorResponse(503, "store not configured", err)
	}
	return errorResponse(502, "store query failed", err)
}
