package site

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultContent []byte

// Content is the editable copy of the landing page.
type Content struct {
	Couple   Couple       `yaml:"couple"`
	Date     string       `yaml:"date"`
	Venue    string       `yaml:"venue"`
	Location string       `yaml:"location"`
	Story    []StoryItem  `yaml:"story"`
	Schedule []Event      `yaml:"schedule"`
	Travel   []TravelItem `yaml:"travel"`
	Gallery  []Photo      `yaml:"gallery"`
}

type Couple struct {
	First  string `yaml:"first"`
	Second string `yaml:"second"`
}

type StoryItem struct {
	When  string `yaml:"when"`
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

type Event struct {
	Time  string `yaml:"time"`
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
	Place string `yaml:"place"`
}

type TravelItem struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
	Link  string `yaml:"link"`
}

type Photo struct {
	URL string `yaml:"url"`
	Alt string `yaml:"alt"`
}

// LoadContent reads page copy from path, or the built-in copy when path is empty.
func LoadContent(path string) (Content, error) {
	raw := defaultContent
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Content{}, fmt.Errorf("read site content: %w", err)
		}
		raw = data
	}
	return parseContent(raw)
}

func parseContent(raw []byte) (Content, error) {
	var content Content
	if err := yaml.Unmarshal(raw, &content); err != nil {
		return Content{}, fmt.Errorf("parse site content: %w", err)
	}
	if err := content.validate(); err != nil {
		return Content{}, err
	}
	return content, nil
}

func (c Content) validate() error {
	if strings.TrimSpace(c.Couple.First) == "" || strings.TrimSpace(c.Couple.Second) == "" {
		return errors.New("site content: both couple names are required")
	}
	if _, err := time.Parse(time.DateOnly, c.Date); err != nil {
		return fmt.Errorf("site content: date must be YYYY-MM-DD: %w", err)
	}
	return nil
}

// DisplayDate formats the wedding date the way the hero shows it.
func (c Content) DisplayDate() string {
	parsed, err := time.Parse(time.DateOnly, c.Date)
	if err != nil {
		return c.Date
	}
	return strings.ToUpper(parsed.Format("January 2, 2006"))
}
