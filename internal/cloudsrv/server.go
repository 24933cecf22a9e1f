// Package cloudsrv serves an in-memory emulation of the cloud REST API that
// the cloud store backend talks to.
package cloudsrv

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/cloudsrv/config"
	"github.com/tansive/datasource-store/internal/cloudsrv/middleware"
	"github.com/tansive/datasource-store/internal/common/httpx"
	"github.com/tansive/datasource-store/internal/common/logtrace"
	commonmiddleware "github.com/tansive/datasource-store/internal/common/middleware"
)

const (
	ServerVersion = "dscloud: 0.1.0"
	ApiVersion    = "v1"
)

type CloudServer struct {
	Router  *chi.Mux
	state   *state
	schemas envelopeSchemas
}

func CreateNewServer() (*CloudServer, error) {
	schemas, err := compileEnvelopeSchemas()
	if err != nil {
		return nil, err
	}
	s := &CloudServer{
		Router:  chi.NewRouter(),
		state:   newState(),
		schemas: schemas,
	}
	return s, nil
}

func (s *CloudServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if config.Config().HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: config.Config().AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", commonmiddleware.RequestIDHeader},
			ExposedHeaders: []string{"Location", commonmiddleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.ErrNotFound(fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)).Send(w)
	})
	s.Router.Route("/", s.mountResourceHandlers)
	if logtrace.IsTraceEnabled() {
		fmt.Println("Routes in cloud router")
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			fmt.Printf("Logging err: %s\n", err.Error())
		}
	}
}

func (s *CloudServer) mountResourceHandlers(r chi.Router) {
	r.Get("/version", s.getVersion)
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerToken)
		for _, h := range s.resourceHandlers() {
			r.Method(h.Method, h.Path, httpx.WrapHttpRsp(h.Handler))
		}
	})
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *CloudServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: ServerVersion,
		ApiVersion:    ApiVersion,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}
