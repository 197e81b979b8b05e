package profile

import (
	"errors"
	"strings"

	"github.com/wb-go/wbf/ginext"

	"github.com/craftspace/catalog/internal/api/handlers/entity"
	"github.com/craftspace/catalog/internal/model"
)

// NewHandler creates the profile form controller.
func NewHandler(u entity.Upserter, r entity.RecordStore, p entity.Preparer, a entity.Auditor) *entity.Handler {
	return entity.NewHandler(model.EntityProfile, parseFields, u, r, p, a)
}

func parseFields(c *ginext.Context) (map[string]any, error) {
	displayName := strings.TrimSpace(c.PostForm("display_name"))
	if displayName == "" {
		return nil, errors.New("display_name is required")
	}

	fields := map[string]any{
		"display_name": displayName,
	}

	if v := c.PostForm("bio"); v != "" {
		fields["bio"] = v
	}
	if v := c.PostForm("email"); v != "" {
		fields["email"] = v
	}

	return fields, nil
}
