package catalog

import (
	"encoding/json"
	"time"

	catalogDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
	"gorm.io/datatypes"
)

type CourseResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	IsFree      bool   `json:"is_free"`
}

type WorkshopResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Summary         string    `json:"summary"`
	Description     string    `json:"description,omitempty"`
	Price           int64     `json:"price"`
	Currency        string    `json:"currency"`
	IsFree          bool      `json:"is_free"`
	StartsAt        time.Time `json:"starts_at"`
	Location        string    `json:"location,omitempty"`
	MaxParticipants int       `json:"max_participants"`
	RegisteredCount int       `json:"registered_count"`
	SeatsLeft       int       `json:"seats_left"`
	IsFull          bool      `json:"is_full"`
}

type ServiceResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	ServiceType string `json:"service_type"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	IsFree      bool   `json:"is_free"`
}

type PostResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Body        string     `json:"body,omitempty"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type PostList struct {
	Posts  []PostResponse `json:"posts"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func CourseFromDataModel(c *catalogDatamodel.Course) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		Summary:     c.Summary,
		Description: c.Description,
		Price:       c.Price,
		Currency:    c.Currency,
		IsFree:      c.Price == 0,
	}
}

func WorkshopFromDataModel(w *catalogDatamodel.Workshop) WorkshopResponse {
	return WorkshopResponse{
		ID:              w.ID,
		Title:           w.Title,
		Slug:            w.Slug,
		Summary:         w.Summary,
		Description:     w.Description,
		Price:           w.Price,
		Currency:        w.Currency,
		IsFree:          w.Price == 0,
		StartsAt:        w.StartsAt,
		Location:        w.Location,
		MaxParticipants: w.MaxParticipants,
		RegisteredCount: w.RegisteredCount,
		SeatsLeft:       w.SeatsLeft(),
		IsFull:          w.IsFull(),
	}
}

func ServiceFromDataModel(s *catalogDatamodel.TradingService) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Title:       s.Title,
		Slug:        s.Slug,
		Summary:     s.Summary,
		Description: s.Description,
		ServiceType: s.ServiceType,
		Price:       s.Price,
		Currency:    s.Currency,
		IsFree:      s.Price == 0,
	}
}

func PostFromDataModel(p *catalogDatamodel.BlogPost, withBody bool) PostResponse {
	resp := PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Tags:        decodeTags(p.Tags),
		PublishedAt: p.PublishedAt,
	}
	if withBody {
		resp.Body = p.Body
	}
	return resp
}

func decodeTags(raw datatypes.JSON) []string {
	tags := []string{}
	if len(raw) == 0 {
		return tags
	}
	_ = json.Unmarshal(raw, &tags)
	return tags
}

func encodeTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	data, _ := json.Marshal(tags)
	return datatypes.JSON(data)
}
