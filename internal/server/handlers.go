package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"schedconv/internal/archive"
	"schedconv/internal/config"
)

var courseFile = regexp.MustCompile(`^(\d{6})\.xml$`)

func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	match := courseFile.FindStringSubmatch(r.PathValue("file"))
	if match == nil {
		http.NotFound(w, r)
		return
	}

	semester := match[1]

	var (
		snap *archive.Snapshot
		err  error
	)

	if v := r.URL.Query().Get("v"); v != "" {
		id, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			http.Error(w, "invalid version", http.StatusBadRequest)
			return
		}

		snap, err = s.Store.Get(r.Context(), id)
		if err == nil && snap.Semester != semester {
			err = archive.ErrNotFound
		}
	} else {
		snap, err = s.Store.Latest(r.Context(), semester)
	}

	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	if !snap.LastModified.IsZero() {
		modified := snap.LastModified.UTC().Truncate(time.Second)

		if since, perr := http.ParseTime(r.Header.Get("If-Modified-Since")); perr == nil && !modified.After(since) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(snap.XML)))
	_, _ = w.Write(snap.XML)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	semester := r.PathValue("semester")
	if !config.IsSemester(semester) {
		http.Error(w, "invalid semester", http.StatusBadRequest)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		limit = n
	}

	snaps, err := s.Store.List(r.Context(), semester, limit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	if snaps == nil {
		snaps = []archive.Snapshot{}
	}

	writeJSON(w, snaps)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	from, errA := strconv.ParseInt(r.URL.Query().Get("a"), 10, 64)
	to, errB := strconv.ParseInt(r.URL.Query().Get("b"), 10, 64)

	if errA != nil || errB != nil {
		http.Error(w, "a and b must be snapshot ids", http.StatusBadRequest)
		return
	}

	d, err := archive.CompareSnapshots(r.Context(), s.Store, from, to)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, d)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, archive.ErrNotFound) {
		http.NotFound(w, r)
		return
	}

	s.Log.Error("Archive query failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
