package router

import (
	"net/http"

	"legal-relay-backend/internal/api"
	"legal-relay-backend/internal/api/endpoints"
	"legal-relay-backend/internal/api/middleware"
	internaljwt "legal-relay-backend/internal/jwt"
)

func WebsocketRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		wsEndpoints := endpoints.NewWebsocketEndpoints(s.Handler())
		mux.HandleFunc(prefix+"/socket", s.MakeHTTPHandleFunc(wsEndpoints.Socket))
	}
}

func PresenceRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		presenceEndpoints := endpoints.NewPresenceEndpoints(s.Relay())
		requireService := middleware.RequireRole(s.Auth(), internaljwt.RoleService)

		mux.HandleFunc(prefix+"/presence", s.MakeHTTPHandleFunc(presenceEndpoints.Summary, requireService))
		mux.HandleFunc(prefix+"/presence/users/{id}", s.MakeHTTPHandleFunc(presenceEndpoints.User, requireService))
		mux.HandleFunc(prefix+"/presence/rooms/{id}", s.MakeHTTPHandleFunc(presenceEndpoints.Room, requireService))
	}
}

// NotificationRoutes serves the notification API. Whether notifications are
// delivered in process or published to the bus depends on the service the
// server was built with.
func NotificationRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		notificationEndpoints := endpoints.NewNotificationEndpoints(s.Notifications())
		requireService := middleware.RequireRole(s.Auth(), internaljwt.RoleService)
		requireAdmin := middleware.RequireRole(s.Auth(), internaljwt.RoleAdmin)

		mux.HandleFunc(prefix+"/notifications/appointments", s.MakeHTTPHandleFunc(notificationEndpoints.Appointments, requireService))
		mux.HandleFunc(prefix+"/notifications/documents", s.MakeHTTPHandleFunc(notificationEndpoints.Documents, requireService))
		mux.HandleFunc(prefix+"/notifications/broadcast", s.MakeHTTPHandleFunc(notificationEndpoints.Broadcast, requireAdmin))
		mux.HandleFunc(prefix+"/notifications/rooms/{id}", s.MakeHTTPHandleFunc(notificationEndpoints.Room, requireAdmin))
	}
}
