package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mangaswap/mangaswap-backend/internal/config"
	"github.com/mangaswap/mangaswap-backend/internal/handler"
	"github.com/mangaswap/mangaswap-backend/internal/identity"
	appmw "github.com/mangaswap/mangaswap-backend/internal/middleware"
	"github.com/mangaswap/mangaswap-backend/internal/repository"
	"github.com/mangaswap/mangaswap-backend/internal/service"
	"github.com/mangaswap/mangaswap-backend/internal/storage"
	"github.com/mangaswap/mangaswap-backend/internal/stream"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	e           *echo.Echo
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	requestRepo repository.RequestRepository
	chatRepo    repository.ChatRepository
}

// New wires the whole application. db may be nil at startup; inject it
// later with SetDB once the connection is up.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = newRequestValidator()
	e.Use(middleware.Recover())
	e.Use(appmw.RequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			return u.Scheme == "https", nil
		},
	}))

	authMw, err := appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID, log)
	if err != nil {
		return nil, err
	}
	storageClient, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	uploader := storage.NewGCSUploader(storageClient, cfg.StorageBucket)
	broker := stream.NewBroker()

	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	chatRepo := repository.NewChatRepository(db)

	userSvc := service.NewUserService(userRepo, identity.NewFirebaseProvider(authMw.Client()), uploader, log)
	listingSvc := service.NewListingService(listingRepo, uploader, log)
	requestSvc := service.NewRequestService(requestRepo, listingRepo, chatRepo)
	chatSvc := service.NewChatService(chatRepo, broker)

	userHandler := handler.NewUserHandler(userSvc)
	listingHandler := handler.NewListingHandler(listingSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	chatHandler := handler.NewChatHandler(chatSvc, log)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")

	api.POST("/me", userHandler.Ensure, authMw.RequireAuth)
	api.GET("/me", userHandler.Me, authMw.RequireAuth)
	api.PUT("/me", userHandler.UpdateMe, authMw.RequireAuth)
	api.DELETE("/me", userHandler.DeleteMe, authMw.RequireAuth)
	api.GET("/users/:uid/public", userHandler.GetPublic)

	api.POST("/listings", listingHandler.Create, authMw.RequireAuth)
	api.GET("/listings", listingHandler.List)
	api.GET("/listings/:id", listingHandler.Get)
	api.PUT("/listings/:id", listingHandler.Update, authMw.RequireAuth)
	api.DELETE("/listings/:id", listingHandler.Delete, authMw.RequireAuth)
	api.GET("/me/listings", listingHandler.ListMine, authMw.RequireAuth)

	api.POST("/listings/:id/requests", requestHandler.Submit, authMw.RequireAuth)
	api.GET("/me/requests", requestHandler.ListMine, authMw.RequireAuth)
	api.POST("/requests/:id/accept", requestHandler.Accept, authMw.RequireAuth)
	api.DELETE("/requests/:id", requestHandler.Reject, authMw.RequireAuth)

	api.GET("/chats", chatHandler.List, authMw.RequireAuth)
	api.GET("/chats/:id", chatHandler.Get, authMw.RequireAuth)
	api.GET("/chats/:id/messages", chatHandler.ListMessages, authMw.RequireAuth)
	api.POST("/chats/:id/messages", chatHandler.SendMessage, authMw.RequireAuth)
	api.DELETE("/chats/:id/messages/:msgId", chatHandler.Unsend, authMw.RequireAuth)
	api.DELETE("/chats/:id", chatHandler.Delete, authMw.RequireAuth)
	api.GET("/chats/:id/stream", chatHandler.Stream, authMw.RequireAuth)

	return &Server{
		e:           e,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		requestRepo: requestRepo,
		chatRepo:    chatRepo,
	}, nil
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) SetDB(db *gorm.DB) {
	s.userRepo.SetDB(db)
	s.listingRepo.SetDB(db)
	s.requestRepo.SetDB(db)
	s.chatRepo.SetDB(db)
}
