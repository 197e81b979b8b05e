package workshop

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/wb-go/wbf/ginext"

	"github.com/craftspace/catalog/internal/api/handlers/entity"
	"github.com/craftspace/catalog/internal/model"
)

// NewHandler creates the workshop form controller.
func NewHandler(u entity.Upserter, r entity.RecordStore, p entity.Preparer, a entity.Auditor) *entity.Handler {
	return entity.NewHandler(model.EntityWorkshop, parseFields, u, r, p, a)
}

func parseFields(c *ginext.Context) (map[string]any, error) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		return nil, errors.New("title is required")
	}

	dateStr := c.PostForm("date")
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return nil, errors.New("date must be an RFC 3339 timestamp")
	}
	if !date.After(time.Now()) {
		return nil, errors.New("date must be in the future")
	}

	capacity, err := strconv.Atoi(c.PostForm("capacity"))
	if err != nil || capacity <= 0 {
		return nil, errors.New("capacity must be a positive number")
	}

	fields := map[string]any{
		"title":    title,
		"date":     dateStr,
		"capacity": capacity,
	}

	if v := c.PostForm("instructor"); v != "" {
		fields["instructor"] = v
	}
	if v := c.PostForm("description"); v != "" {
		fields["description"] = v
	}
	if v := c.PostForm("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return nil, errors.New("price must be a non-negative number")
		}
		fields["price"] = price
	}

	return fields, nil
}
