package router

import (
	"net/http"

	"legal-relay-backend/internal/api"
	"legal-relay-backend/internal/api/endpoints"
)

func AuthRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(s.Auth())
		mux.HandleFunc(prefix+"/auth/token", s.MakeHTTPHandleFunc(authEndpoints.Token))
	}
}
