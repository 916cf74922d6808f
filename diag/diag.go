// Package diag serves the stored resource attributes, and optionally metrics, over HTTP.
package diag

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cschleiden/go-resume/lifecycle"
	"github.com/cschleiden/go-resume/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultCount = 25

// NewServeMux returns an *http.ServeMux that serves the diagnostics API at /api.
func NewServeMux(s store.Store, opts ...Option) *http.ServeMux {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	mux := http.NewServeMux()

	// API
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		// Only support GET requests
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		relativeURL := strings.TrimPrefix(r.URL.Path, "/api/")

		// /api/
		if relativeURL == "" {
			count := defaultCount
			if countStr := r.URL.Query().Get("count"); countStr != "" {
				var err error
				count, err = strconv.Atoi(countStr)
				if err != nil || count <= 0 {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
			}

			records, err := s.List(r.Context(), count)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			writeJSON(w, records)
			return
		}

		segments := strings.Split(relativeURL, "/")

		// /api/{physicalID}
		if len(segments) == 1 {
			record, err := s.Get(r.Context(), segments[0])
			if err != nil {
				if errors.Is(err, store.ErrRecordNotFound) {
					w.WriteHeader(http.StatusNotFound)
					return
				}

				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			result := &RecordInfo{Record: record}

			handle := record.Attributes[lifecycle.AttrLastExecutionArn]
			if o.backend != nil && handle != "" {
				history, err := o.backend.GetExecutionHistory(r.Context(), handle, o.backend.Options().MaxHistoryEvents, true)
				if err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}

				result.History = make([]*Event, 0, len(history))
				for _, event := range history {
					result.History = append(result.History, &Event{
						ID:         event.ID,
						Type:       event.Type.String(),
						SourceType: event.SourceType,
						Timestamp:  event.Timestamp,
						Attributes: event.Attributes,
					})
				}
			}

			writeJSON(w, result)
			return
		}

		w.WriteHeader(http.StatusNotFound)
	})

	if o.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
