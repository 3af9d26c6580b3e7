package server

import (
	"net/http"

	"topmovies/internal/conf"
	"topmovies/internal/service"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// htmlErrorEncoder renders handler errors as HTML pages instead of the
// default JSON body.
func htmlErrorEncoder(logger log.Logger) khttp.EncodeErrorFunc {
	l := log.NewHelper(logger)
	return func(w http.ResponseWriter, r *http.Request, err error) {
		se := errors.FromError(err)
		if se.Code >= http.StatusInternalServerError {
			l.WithContext(r.Context()).Errorw("msg", "request failed", "path", r.URL.Path, "reason", se.Reason, "error", err)
		}
		service.RenderError(w, se)
	}
}

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Server, session *conf.Session, movieSvc *service.MovieService, logger log.Logger) *khttp.Server {
	var opts = []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
		khttp.Filter(
			RequestIDFilter(),
			CSRFFilter(session, logger),
		),
		khttp.ErrorEncoder(htmlErrorEncoder(logger)),
	}
	if c.Http != nil {
		if c.Http.Network != "" {
			opts = append(opts, khttp.Network(c.Http.Network))
		}
		if c.Http.Addr != "" {
			opts = append(opts, khttp.Address(c.Http.Addr))
		}
		if d := c.Http.Timeout.AsDuration(); d > 0 {
			opts = append(opts, khttp.Timeout(d))
		}
	}
	srv := khttp.NewServer(opts...)
	registerRoutes(srv, movieSvc)
	return srv
}

func registerRoutes(srv *khttp.Server, s *service.MovieService) {
	r := srv.Route("/")
	r.GET("/", s.ListMovies)
	r.GET("/add", s.AddMovieForm)
	r.POST("/add", s.SearchMovies)
	r.GET("/find", s.FindMovie)
	r.GET("/update/{id}", s.EditMovieForm)
	r.POST("/update/{id}", s.EditMovie)
	r.GET("/delete/{id}", s.DeleteMovie)
	r.GET("/healthz", s.HealthCheck)
}
