// Package bench implements the benchmark execution engine: the CRUD
// workload unit, the warmup phase, the virtual-user scheduler, and the
// threshold evaluation that decides the run outcome.
package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/bookbench/internal/bench/metrics"
	"github.com/wesleyorama2/bookbench/internal/httpclient"
)

// createResponseSchema is what a successful creation body must look like:
// an object carrying a non-null server-assigned id.
const createResponseSchema = `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": { "type": ["string", "integer", "number"] }
	}
}`

var createSchema = jsonschema.MustCompileString("create-response.json", createResponseSchema)

// Workload executes one create-read-update-delete cycle against the target
// service. It is the unit of work repeated by every virtual user and by the
// warmup phase. Safe for concurrent use.
type Workload struct {
	client  *httpclient.Client
	baseURL string
	pause   time.Duration

	// ErrOut receives transport-failure log lines. Defaults to stderr.
	ErrOut io.Writer
}

// NewWorkload creates a workload bound to the target service.
// pause is the fixed delay applied after each CRUD step.
func NewWorkload(client *httpclient.Client, baseURL string, pause time.Duration) *Workload {
	return &Workload{
		client:  client,
		baseURL: baseURL,
		pause:   pause,
		ErrOut:  os.Stderr,
	}
}

// Run executes one workload cycle for the identity (label, iteration),
// reporting one timing sample per issued request into rec.
//
// The steps are strictly sequential: create, read, update, delete. Check
// failures never abort the remaining steps, with one exception: when the
// create response does not yield a usable id there is no entity to read,
// update, or delete, so the cycle ends after the create sample.
func (w *Workload) Run(ctx context.Context, label string, iteration int64, rec metrics.Recorder) {
	book := NewBook(label, iteration)

	id := w.create(ctx, book, rec)
	w.pauseStep(ctx)
	if id == "" {
		return
	}

	w.read(ctx, id, rec)
	w.pauseStep(ctx)

	w.update(ctx, book.Updated(), id, rec)
	w.pauseStep(ctx)

	w.delete(ctx, id, rec)
	w.pauseStep(ctx)
}

// create issues the creation request and returns the server-assigned id,
// or "" when the response did not carry one.
func (w *Workload) create(ctx context.Context, book Book, rec metrics.Recorder) string {
	payload, err := json.Marshal(book)
	if err != nil {
		rec.AddCheck(false)
		return ""
	}

	resp, err := w.client.Do(ctx, http.MethodPost, w.baseURL, payload)
	if err != nil {
		w.logFailure("create", err)
		rec.AddCheck(false)
		return ""
	}

	// The create sample measures latency, not correctness: it is recorded
	// regardless of the status or body checks below.
	rec.Record(metrics.OpCreate, resp.Duration)
	rec.AddCheck(resp.StatusCode == http.StatusOK)
	rec.AddCheck(validCreateBody(resp.Body))

	id := gjson.GetBytes(resp.Body, "id")
	if !id.Exists() || id.String() == "" || id.Type == gjson.Null {
		return ""
	}
	return id.String()
}

func (w *Workload) read(ctx context.Context, id string, rec metrics.Recorder) {
	resp, err := w.client.Do(ctx, http.MethodGet, w.entityURL(id), nil)
	if err != nil {
		w.logFailure("read", err)
		rec.AddCheck(false)
		return
	}
	rec.Record(metrics.OpRead, resp.Duration)
	rec.AddCheck(resp.StatusCode == http.StatusOK)
}

func (w *Workload) update(ctx context.Context, book Book, id string, rec metrics.Recorder) {
	payload, err := json.Marshal(book)
	if err != nil {
		rec.AddCheck(false)
		return
	}

	resp, err := w.client.Do(ctx, http.MethodPut, w.entityURL(id), payload)
	if err != nil {
		w.logFailure("update", err)
		rec.AddCheck(false)
		return
	}
	rec.Record(metrics.OpUpdate, resp.Duration)
	rec.AddCheck(resp.StatusCode == http.StatusOK)
}

func (w *Workload) delete(ctx context.Context, id string, rec metrics.Recorder) {
	resp, err := w.client.Do(ctx, http.MethodDelete, w.entityURL(id), nil)
	if err != nil {
		w.logFailure("delete", err)
		rec.AddCheck(false)
		return
	}
	rec.Record(metrics.OpDelete, resp.Duration)
	rec.AddCheck(resp.StatusCode == http.StatusOK)
}

func (w *Workload) entityURL(id string) string {
	return w.baseURL + "/" + id
}

// pauseStep suspends between steps to pace request issuance. The pause is
// cut short when the context is cancelled.
func (w *Workload) pauseStep(ctx context.Context) {
	if w.pause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(w.pause):
	}
}

func (w *Workload) logFailure(step string, err error) {
	if w.ErrOut != nil {
		fmt.Fprintf(w.ErrOut, "%s request failed: %v\n", step, err)
	}
}

// validCreateBody validates the creation response body against the
// expected shape. A body that is not JSON fails the check.
func validCreateBody(body []byte) bool {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	return createSchema.Validate(v) == nil
}
