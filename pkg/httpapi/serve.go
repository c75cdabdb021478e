package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bdiffgo/bdiff/templates"
	"github.com/go-chi/chi/v5"
)

// serveResult renders the edit script previously computed for {id}: JSON
// for API callers (or when the ".json" suffix forces it), an HTML table
// for browsers.
func (s *Server) serveResult(w http.ResponseWriter, r *http.Request) error {
	if s.Cache == nil {
		return fmt.Errorf("no result cache configured")
	}

	id := chi.URLParam(r, "id")
	raw := !isBrowser(r)
	if strings.HasSuffix(id, ".json") {
		id = strings.TrimSuffix(id, ".json")
		raw = true
	}

	entry, hit, err := s.Cache.Get(id)
	if err != nil {
		return err
	}
	if !hit {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found\n"))
		return nil
	}

	if raw {
		w.Header().Set(ctHeader, ctJSON)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entry.Records)
	}

	return templates.Templates.ExecuteTemplate(w, "result.tmpl", struct {
		ID      string
		Records any
	}{ID: id, Records: entry.Records})
}

// serveFile returns a handler serving one original file of the uploaded
// pair back unchanged: n=0 for src, n=1 for dest.
func (s *Server) serveFile(n int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Cache == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		id := chi.URLParam(r, "id")

		arc, err := s.Cache.GetArchive(id)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if len(arc) == 0 {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("not found\n"))
			return
		}

		files, err := tgzReadFiles(arc)
		if err != nil || n >= len(files) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f := files[n]

		w.Header().Set(ctHeader, ctPlain)
		w.Header().Set("Content-Disposition", `inline; filename="`+f.Name+`"`)
		w.Write([]byte(f.Content))
	}
}
