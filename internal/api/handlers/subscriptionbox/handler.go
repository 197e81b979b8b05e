package subscriptionbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"github.com/craftspace/catalog/internal/api/form"
	"github.com/craftspace/catalog/internal/api/handlers/entity"
	"github.com/craftspace/catalog/internal/api/respond"
	"github.com/craftspace/catalog/internal/model"
	"github.com/craftspace/catalog/internal/service/subscription"
)

// lifecycle drives subscription status transitions.
type lifecycle interface {
	Transition(ctx context.Context, id uuid.UUID, next model.SubscriptionStatus) (model.Record, error)
}

// Handler serves subscription box CRUD plus the lifecycle endpoint.
type Handler struct {
	*entity.Handler
	lifecycle lifecycle
}

// NewHandler creates the subscription box form controller.
func NewHandler(u entity.Upserter, r entity.RecordStore, p entity.Preparer, a entity.Auditor, l lifecycle) *Handler {
	return &Handler{
		Handler:   entity.NewHandler(model.EntitySubscriptionBox, parseFields, u, r, p, a),
		lifecycle: l,
	}
}

// Transition moves a box to the requested lifecycle status.
func (h *Handler) Transition(c *ginext.Context) {
	id, ok := form.ID(c)
	if !ok {
		return
	}

	next := model.SubscriptionStatus(c.PostForm("status"))
	rec, err := h.lifecycle.Transition(c.Request.Context(), id, next)
	if err != nil {
		if errors.Is(err, subscription.ErrInvalidTransition) {
			respond.Fail(c, http.StatusConflict, err)
			return
		}

		form.WriteError(c, err)
		return
	}

	respond.OK(c, rec)
}

func parseFields(c *ginext.Context) (map[string]any, error) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		return nil, errors.New("title is required")
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		return nil, errors.New("price must be a non-negative number")
	}

	fields := map[string]any{
		"title": title,
		"price": price,
	}

	if v := c.PostForm("frequency"); v != "" {
		fields["frequency"] = v
	}
	if v := c.PostForm("description"); v != "" {
		fields["description"] = v
	}
	if v := c.PostForm("status"); v != "" {
		if !model.SubscriptionStatus(v).Valid() {
			return nil, fmt.Errorf("status must be one of active, paused, cancelled")
		}
		fields["status"] = v
	}

	return fields, nil
}
