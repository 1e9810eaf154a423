package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/kanban/internal/api/v1"
	"github.com/gosuda/kanban/internal/api/ws"
)

func registerPublicRoutes(api huma.API, authSvc v1.AuthService, appURL string) {
	v1.RegisterAuthRoutes(api, authSvc, appURL)
}

func registerAPIRoutes(api huma.API, boards v1.BoardService, authSvc v1.AuthService) {
	v1.RegisterSessionRoutes(api, authSvc)
	v1.RegisterBoardRoutes(api, boards)
	v1.RegisterColumnRoutes(api, boards)
	v1.RegisterCardRoutes(api, boards)
	v1.RegisterTagRoutes(api, boards)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/board/{boardID}", hub.ServeBoard)
	r.Get("/notices", hub.ServeUser)
}
