package httpapi

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bdiffgo/bdiff/pkg/resultcache"
	"github.com/klauspost/compress/gzip"
)

const (
	maxBodySize        = 1 << 20 // 1M
	maxMultipartMemory = maxBodySize

	maxBytesWeek = (1 << 20) * 2 // 2M per caller per week
	maxCallsWeek = 100           // max diff calls per caller per week
)

// upload reads the posted src/dest file pair, runs BDiff over it (through
// the cache when one is configured), and responds with the resulting id
// — a link to GET /{id} for the rendered edit script.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("error: " + err.Error() + "\n"))
		w.Write(s.usageString())
		return nil
	}
	defer r.MultipartForm.RemoveAll()

	var (
		arc []byte
		err error
	)
	if len(r.MultipartForm.File) > 0 {
		arc, err = archiveFromFormFiles(r.MultipartForm)
	} else {
		arc, err = archiveFromFormValues(r.MultipartForm)
	}
	if err != nil {
		return err
	}

	files, err := tgzReadFiles(arc)
	if err != nil {
		return err
	}
	if len(files) != 2 {
		return fmt.Errorf("expected 2 files, got %d", len(files))
	}
	srcText, destText := files[0].Content, files[1].Content

	id, err := resultcache.Fingerprint(srcText, destText, s.Options)
	if err != nil {
		return err
	}
	link := s.PublicURL + "/" + id
	output := func() {
		w.Header().Set(ctHeader, ctPlain)
		w.Header().Set("Location", link)
		w.WriteHeader(http.StatusFound)
		w.Write([]byte(link + "\n"))
	}

	if s.Cache == nil {
		output()
		return nil
	}

	if _, hit, err := s.Cache.Get(id); err != nil {
		return err
	} else if hit {
		output()
		return nil
	}

	now := time.Now().UTC()
	weekNum := (now.YearDay() - 1) / 7
	err = s.Cache.AddAmountsAndCompare(
		r.RemoteAddr,
		resultcache.UsageStat{
			Period:   fmt.Sprintf("%d/%d", now.Year(), weekNum),
			NumBytes: uint64(len(arc)),
			NumCalls: 1,
		},
		resultcache.UploadLimits{MaxBytes: maxBytesWeek, MaxCalls: maxCallsWeek},
	)
	if err != nil {
		if errors.Is(err, resultcache.ErrLimitsExceeded) {
			w.Header().Set(ctHeader, ctPlain)
			w.WriteHeader(http.StatusTooManyRequests)
			resetTime := time.Date(now.Year(), time.January, ((weekNum+1)*7)+1, 0, 0, 0, 0, time.UTC)
			w.Write([]byte(fmt.Sprintf(
				"limit exceeded; will reset on %s (in %s)\n",
				resetTime.Format(time.RFC3339),
				resetTime.Sub(now),
			)))
			return nil
		}
		return err
	}

	records, err := resultcache.Run(s.Cache, "src", "dest", srcText, destText, s.Options)
	if err != nil {
		return err
	}
	_ = records // computed for its cache side effect; served back by GET /{id}

	if err := s.Cache.PutArchive(id, arc); err != nil {
		return err
	}

	output()
	return nil
}

var gzipWriterPool = sync.Pool{
	New: func() any {
		return &gzip.Writer{}
	},
}

func archiveFromFormFiles(mf *multipart.Form) ([]byte, error) {
	srcS, destS := mf.File["src"], mf.File["dest"]
	if len(srcS) != 1 || len(destS) != 1 {
		return nil, errUsage
	}
	src, dest := srcS[0], destS[0]

	var buf bytes.Buffer
	gz := gzipWriterPool.Get().(*gzip.Writer)
	gz.Reset(&buf)
	defer gzipWriterPool.Put(gz)
	tw := tar.NewWriter(gz)

	for _, f := range [...]*multipart.FileHeader{src, dest} {
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer r.Close()
		if err := tarWriteFile(tw, f.Filename, f.Size, r); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func archiveFromFormValues(mf *multipart.Form) ([]byte, error) {
	withDefault := func(s []string, def string) string {
		if len(s) == 0 || s[0] == "" {
			return def
		}
		return s[0]
	}
	var (
		srcContent  = mf.Value["src"]
		destContent = mf.Value["dest"]
		srcName     = withDefault(mf.Value["src_name"], "src")
		destName    = withDefault(mf.Value["dest_name"], "dest")
	)
	if len(srcContent) != 1 || len(destContent) != 1 {
		return nil, errUsage
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	if err := tarWriteFile(tw, srcName, int64(len(srcContent[0])), strings.NewReader(srcContent[0])); err != nil {
		return nil, err
	}
	if err := tarWriteFile(tw, destName, int64(len(destContent[0])), strings.NewReader(destContent[0])); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tarWriteFile(tw *tar.Writer, name string, size int64, r io.Reader) error {
	if err := tw.WriteHeader(&tar.Header{Name: name, Size: size, Mode: 0o600}); err != nil {
		return err
	}
	_, err := io.Copy(tw, r)
	return err
}

type diffFile struct {
	Name    string
	Content string
}

func tgzReadFiles(data []byte) ([]diffFile, error) {
	gzrd, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var files []diffFile
	rd := tar.NewReader(gzrd)
	for {
		f, err := rd.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		data, err := io.ReadAll(rd)
		if err != nil {
			return nil, err
		}
		files = append(files, diffFile{Name: f.Name, Content: string(data)})
	}

	if err := gzrd.Close(); err != nil {
		return nil, err
	}
	return files, nil
}
