package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"mechmarket/internal/adapter/persistence/memory"
	"mechmarket/internal/domain/events"
	"mechmarket/internal/usecase"

	"github.com/gin-gonic/gin"
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.Event) {}

func newJobRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	uc := usecase.NewJobUseCase(
		store.JobStore(),
		store.PaymentStore(),
		store,
		noopPublisher{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		48*time.Hour,
	)
	h := NewJobHandler(uc)

	r := gin.New()
	r.POST("/v1/jobs", ActorMiddleware(), h.CreateJob)
	r.GET("/v1/jobs/:job_id", h.GetJob)
	r.PATCH("/v1/jobs/:job_id/status", ActorMiddleware(), h.TransitionJob)
	return r, store
}

func doJSON(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var customerHeaders = map[string]string{
	"X-Actor-Id":   "cust-1",
	"X-Actor-Role": "customer",
}

func TestJobHandler_CreateJob(t *testing.T) {
	t.Run("creates a job", func(t *testing.T) {
		r, _ := newJobRouter(t)

		w := doJSON(r, http.MethodPost, "/v1/jobs",
			`{"category":"brakes","description":"pads worn","requested_price_cents":25000}`,
			customerHeaders,
		)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid response json: %v", err)
		}
		if body["status"] != "posted" || body["customer_id"] != "cust-1" {
			t.Fatalf("unexpected body: %v", body)
		}
		if body["urgency"] != "standard" {
			t.Fatalf("expected default urgency, got %v", body["urgency"])
		}
	})

	t.Run("missing actor headers", func(t *testing.T) {
		r, _ := newJobRouter(t)

		w := doJSON(r, http.MethodPost, "/v1/jobs", `{"category":"brakes","requested_price_cents":100}`, nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("system role rejected from outside", func(t *testing.T) {
		r, _ := newJobRouter(t)

		w := doJSON(r, http.MethodPost, "/v1/jobs", `{"category":"brakes","requested_price_cents":100}`, map[string]string{
			"X-Actor-Id":   "svc",
			"X-Actor-Role": "system",
		})
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("mechanic cannot post", func(t *testing.T) {
		r, _ := newJobRouter(t)

		w := doJSON(r, http.MethodPost, "/v1/jobs", `{"category":"brakes","requested_price_cents":100}`, map[string]string{
			"X-Actor-Id":   "mech-1",
			"X-Actor-Role": "mechanic",
		})
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		r, _ := newJobRouter(t)

		w := doJSON(r, http.MethodPost, "/v1/jobs", "{", customerHeaders)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestJobHandler_GetJob(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		r, _ := newJobRouter(t)

		w := doJSON(r, http.MethodGet, "/v1/jobs/missing", "", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestJobHandler_TransitionJob(t *testing.T) {
	t.Run("stale version maps to conflict", func(t *testing.T) {
		r, _ := newJobRouter(t)

		w := doJSON(r, http.MethodPost, "/v1/jobs",
			`{"category":"brakes","requested_price_cents":25000}`, customerHeaders)
		if w.Code != http.StatusCreated {
			t.Fatalf("create failed: %d", w.Code)
		}
		var created map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
			t.Fatal(err)
		}
		jobID := created["id"].(string)

		w = doJSON(r, http.MethodPatch, "/v1/jobs/"+jobID+"/status",
			`{"status":"cancelled","version":99}`, customerHeaders)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("customer cancels a posted job", func(t *testing.T) {
		r, _ := newJobRouter(t)

		w := doJSON(r, http.MethodPost, "/v1/jobs",
			`{"category":"brakes","requested_price_cents":25000}`, customerHeaders)
		var created map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
			t.Fatal(err)
		}
		jobID := created["id"].(string)
		version := int64(created["version"].(float64))

		w = doJSON(r, http.MethodPatch, "/v1/jobs/"+jobID+"/status",
			`{"status":"cancelled","version":`+strconv.FormatInt(version, 10)+`}`, customerHeaders)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var updated map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
			t.Fatal(err)
		}
		if updated["status"] != "cancelled" {
			t.Fatalf("unexpected status: %v", updated["status"])
		}
	})
}
