package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	rsvpdomain "wedding-app-go/internal/domain/rsvp"
	"wedding-app-go/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

type pageData struct {
	Content      Content
	MaxPartySize int
	Meals        []rsvpdomain.MealChoice
	Attendance   []rsvpdomain.Attendance
}

// Site renders the landing page and serves its assets.
type Site struct {
	page []byte
	log  logger.Logger
}

// New renders the page once; the content does not change while the server runs.
func New(content Content, maxPartySize int, log logger.Logger) (*Site, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse site template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, pageData{
		Content:      content,
		MaxPartySize: maxPartySize,
		Meals:        []rsvpdomain.MealChoice{rsvpdomain.MealSteak, rsvpdomain.MealChicken, rsvpdomain.MealFish},
		Attendance:   []rsvpdomain.Attendance{rsvpdomain.AttendanceYes, rsvpdomain.AttendanceNo, rsvpdomain.AttendanceMaybe},
	})
	if err != nil {
		return nil, fmt.Errorf("render site template: %w", err)
	}

	return &Site{page: buf.Bytes(), log: log}, nil
}

func (s *Site) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(s.page); err != nil {
		s.log.Debug("site.index: write failed", "error", err)
	}
}

func (s *Site) Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
