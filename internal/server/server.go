package server

import (
	"app/internal/config"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Server はechoのラッパー。
type Server struct {
	e *echo.Echo
}

// New はミドルウェアと全ルートを組んだサーバーを返す。
func New(cfg config.Config, userRepo repository.UserRepository, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	registerRoutes(e, cfg, userRepo, h)

	return &Server{e: e}
}

func (s *Server) Start(port string) error {
	return s.e.Start(":" + port)
}
