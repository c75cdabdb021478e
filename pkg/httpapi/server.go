// Package httpapi exposes bdiff.Run over HTTP: a multipart upload of two
// files returns BDiff's edit script, as JSON or as a rendered HTML table
// depending on how the request looks. Grounded on the teacher's
// pkg/http (router/middleware/upload idiom), repurposed from "store and
// redisplay an uploaded file pair" to "diff an uploaded pair and render
// its edit script".
package httpapi

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/bdiffgo/bdiff/pkg/bdiff"
	"github.com/bdiffgo/bdiff/pkg/resultcache"
	"github.com/bdiffgo/bdiff/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is BDiff's HTTP front-end. Options is the bdiff.Options used for
// every request; there is no per-request override. Cache may be nil, in
// which case upload only answers with the result link without computing
// an edit script, and GET /{id} fails with a 500.
type Server struct {
	PublicURL string
	Cache     *resultcache.Cache
	Options   bdiff.Options
	Output    io.Writer
}

func (s *Server) Router() chi.Router {
	if s.Output == nil {
		s.Output = os.Stdout
	}
	rt := chi.NewRouter()
	rt.Use(
		middleware.RealIP,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger: log.New(s.Output, "", log.LstdFlags),
		}),
		middleware.Recoverer,
		middleware.Timeout(time.Second*60),
	)
	rt.Get("/", s.index)
	rt.Post("/", s.e(s.upload))
	fs := http.FileServer(http.Dir("."))
	rt.Get("/static/*", fs.ServeHTTP)
	rt.Get("/{id}", s.e(s.serveResult))
	rt.Get("/{id}/src", s.serveFile(0))
	rt.Get("/{id}/dest", s.serveFile(1))
	return rt
}

const (
	ctHeader = "Content-Type"
	ctPlain  = "text/plain; charset=utf-8"
	ctJSON   = "application/json; charset=utf-8"
)

var (
	reBrowser = regexp.MustCompile("(?i)(?:chrome|firefox|safari|gecko)/")
	errUsage  = errors.New("")
)

func (s *Server) usageString() []byte {
	return []byte("usage: curl -F src=@before.txt -F dest=@after.txt " + s.PublicURL + "\n")
}

func isBrowser(r *http.Request) bool {
	return reBrowser.MatchString(r.UserAgent())
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if !isBrowser(r) {
		w.Header().Set(ctHeader, ctPlain)
		w.Write(s.usageString())
		return
	}
	templates.Templates.ExecuteTemplate(w, "index.tmpl", struct{ PublicURL string }{s.PublicURL})
}

// e wraps a handler that can fail, distinguishing a usage error (bad
// request shape, 400) from everything else (500) — same adapter as the
// teacher's own pkg/http.Server.e.
func (s *Server) e(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, errUsage):
			w.WriteHeader(http.StatusBadRequest)
			w.Write(s.usageString())
		case errors.Is(err, bdiff.ErrInputMissing), errors.Is(err, bdiff.ErrEncoding):
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("400 " + err.Error() + "\n"))
		default:
			log.Printf("request error: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("500 internal server error\n"))
		}
	}
}
