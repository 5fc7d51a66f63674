// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/polls/internal/clock"
	"github.com/tombee/polls/internal/httputil"
	"github.com/tombee/polls/internal/log"
	"github.com/tombee/polls/internal/polls"
)

// StoreErrorRecorder counts failed store calls per view.
type StoreErrorRecorder interface {
	RecordStoreError(view string)
}

// indexPage is the data passed to the index template.
type indexPage struct {
	Questions []*polls.Question
}

// detailPage is the data passed to the detail template.
type detailPage struct {
	Question *polls.Question
}

// Views renders the polls pages from a Reader. Every request performs
// exactly one read at the clock's current instant.
type Views struct {
	reader    polls.Reader
	clock     clock.Clock
	templates *template.Template
	logger    *slog.Logger
	errors    StoreErrorRecorder
}

// NewViews creates the index and detail handlers. recorder may be nil.
func NewViews(reader polls.Reader, c clock.Clock, logger *slog.Logger, recorder StoreErrorRecorder) (*Views, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = clock.System{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Views{
		reader:    reader,
		clock:     c,
		templates: tmpl,
		logger:    logger,
		errors:    recorder,
	}, nil
}

// Index handles GET /polls/. It lists every published question newest
// first, or the empty-state message when there are none.
func (v *Views) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tagSpan(ctx, IndexRoute)

	questions, err := v.reader.ListPublished(ctx, v.clock.Now())
	if err != nil {
		v.serverError(w, r, IndexRoute, err)
		return
	}

	log.Trace(ctx, v.logger, "rendering index",
		slog.String(log.ViewKey, IndexRoute),
		slog.Int("count", len(questions)),
	)
	v.render(w, r, IndexRoute, http.StatusOK, "index", indexPage{Questions: questions})
}

// Detail handles GET /polls/{id}/. Unknown ids, malformed ids and questions
// with a future PubDate all produce 404.
func (v *Views) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tagSpan(ctx, DetailRoute)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		v.notFound(w, r)
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("polls.question_id", id))

	q, err := v.reader.GetPublished(ctx, id, v.clock.Now())
	if polls.IsNotFound(err) {
		v.logger.DebugContext(ctx, "question not visible",
			slog.String(log.ViewKey, DetailRoute),
			slog.Int64(log.QuestionIDKey, id),
		)
		v.notFound(w, r)
		return
	}
	if err != nil {
		v.serverError(w, r, DetailRoute, err)
		return
	}

	v.render(w, r, DetailRoute, http.StatusOK, "detail", detailPage{Question: q})
}

func (v *Views) notFound(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, DetailRoute, http.StatusNotFound, "not_found", nil)
}

// serverError logs err and sends a generic 500 page. Error text never
// reaches the response body.
func (v *Views) serverError(w http.ResponseWriter, r *http.Request, view string, err error) {
	v.logger.ErrorContext(r.Context(), "store query failed",
		slog.String(log.ViewKey, view),
		log.Error(err),
	)
	if v.errors != nil {
		v.errors.RecordStoreError(view)
	}
	if rerr := httputil.WriteHTML(w, http.StatusInternalServerError, v.templates, "error", nil); rerr != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (v *Views) render(w http.ResponseWriter, r *http.Request, view string, status int, name string, data any) {
	err := httputil.WriteHTML(w, status, v.templates, name, data)
	if err == nil {
		return
	}
	v.logger.ErrorContext(r.Context(), "failed to render template",
		slog.String(log.ViewKey, view),
		slog.String("template", name),
		log.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func tagSpan(ctx context.Context, view string) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("polls.view", view))
}
