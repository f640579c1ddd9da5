package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/etms-hr/etms-backend-go/internal/handler/http/response"
	"github.com/etms-hr/etms-backend-go/internal/pkg/pagination"
	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst. It writes a 400 and returns
// false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decode(w, r, dst, false)
}

// decodeOptionalJSON is decodeJSON that accepts an empty body.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decode(w, r, dst, true)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}, optional bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	slog.Debug("Request decode error", "path", r.URL.Path, "error", err)
	response.BadRequest(w, "Invalid request format", nil)
	return false
}

// pathID returns the {id} URL parameter once it is a well-formed id.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid id", map[string]string{"id": "id must be a valid id"})
		return "", false
	}
	return id, true
}

func pageParams(w http.ResponseWriter, r *http.Request, defaultLimit int) (pagination.Params, bool) {
	p, err := pagination.Parse(r.URL.Query(), defaultLimit)
	if err != nil {
		response.HandleError(w, err)
		return pagination.Params{}, false
	}
	return p, true
}

// queryParser collects errors across several typed query values.
type queryParser struct {
	q    url.Values
	errs validator.ValidationErrors
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{q: r.URL.Query()}
}

func (p *queryParser) String(key string) string {
	return strings.TrimSpace(p.q.Get(key))
}

func (p *queryParser) Date(key string) *time.Time {
	raw := p.String(key)
	if raw == "" {
		return nil
	}
	d, ok := validator.IsValidDate(raw)
	if !ok {
		p.errs.Add(key, key+" must be YYYY-MM-DD")
		return nil
	}
	return &d
}

func (p *queryParser) Month(key string) *time.Time {
	raw := p.String(key)
	if raw == "" {
		return nil
	}
	m, err := time.Parse("2006-01", raw)
	if err != nil {
		p.errs.Add(key, key+" must be YYYY-MM")
		return nil
	}
	return &m
}

func (p *queryParser) Int(key string) int {
	raw := p.String(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs.Add(key, key+" must be an integer")
		return 0
	}
	return v
}

func (p *queryParser) Bool(key string) *bool {
	raw := p.String(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs.Add(key, key+" must be true or false")
		return nil
	}
	return &v
}

func (p *queryParser) Err() error {
	return p.errs.Err()
}
