package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/craftspace/catalog/internal/api/handlers/entity"
	"github.com/craftspace/catalog/internal/api/handlers/subscriptionbox"
	"github.com/craftspace/catalog/internal/middleware"
)

// Handlers carries the per-entity form controllers mounted by Setup.
type Handlers struct {
	Events    *entity.Handler
	Workshops *entity.Handler
	Products  *entity.Handler
	Boxes     *subscriptionbox.Handler
	Profiles  *entity.Handler
}

func Setup(h Handlers) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORSMiddleware())
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	mount(api, "/events", h.Events)
	mount(api, "/workshops", h.Workshops)
	mount(api, "/products", h.Products)
	mount(api, "/subscription-boxes", h.Boxes.Handler)
	mount(api, "/profiles", h.Profiles)

	api.POST("/subscription-boxes/:id/status", h.Boxes.Transition)

	return r
}

func mount(api *ginext.RouterGroup, path string, h *entity.Handler) {
	api.POST(path, h.Create)
	api.GET(path, h.List)
	api.GET(path+"/:id", h.Get)
	api.PUT(path+"/:id", h.Update)
	api.DELETE(path+"/:id", h.Delete)
}
