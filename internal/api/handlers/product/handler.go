package product

import (
	"errors"
	"strconv"
	"strings"

	"github.com/wb-go/wbf/ginext"

	"github.com/craftspace/catalog/internal/api/handlers/entity"
	"github.com/craftspace/catalog/internal/model"
)

// NewHandler creates the product form controller.
func NewHandler(u entity.Upserter, r entity.RecordStore, p entity.Preparer, a entity.Auditor) *entity.Handler {
	return entity.NewHandler(model.EntityProduct, parseFields, u, r, p, a)
}

func parseFields(c *ginext.Context) (map[string]any, error) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		return nil, errors.New("title is required")
	}

	description := strings.TrimSpace(c.PostForm("description"))
	if description == "" {
		return nil, errors.New("description is required")
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		return nil, errors.New("price must be a non-negative number")
	}

	fields := map[string]any{
		"title":       title,
		"description": description,
		"price":       price,
	}

	if v := c.PostForm("sku"); v != "" {
		fields["sku"] = v
	}
	if v := c.PostForm("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			return nil, errors.New("stock must be a non-negative number")
		}
		fields["stock"] = stock
	}

	return fields, nil
}
