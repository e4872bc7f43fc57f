package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MaggPerez/stututor-backend/internal/api/handlers"
	appMiddleware "github.com/MaggPerez/stututor-backend/internal/api/middlewares"
	"github.com/MaggPerez/stututor-backend/internal/config"
	"github.com/MaggPerez/stututor-backend/internal/core"
	"github.com/MaggPerez/stututor-backend/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, extractor core.TextExtractor, llm core.LLMProvider) *Server {
	chatSvc := services.NewChatService(db, llm)
	docSvc := services.NewDocumentService(db, obj, extractor, cfg.BucketName)
	genSvc := services.NewGenerateService(llm)

	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret, time.Duration(cfg.JWTExpireHrs)*time.Hour)
	chatHandler := handlers.NewChatHandler(chatSvc)
	convHandler := handlers.NewConversationHandler(db)
	uploadHandler := handlers.NewUploadHandler(docSvc)
	genHandler := handlers.NewGenerateHandler(genSvc)
	courseHandler := handlers.NewCourseHandler(db)
	assignmentHandler := handlers.NewAssignmentHandler(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", handlers.Health)

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))

			protected.Post("/chat", chatHandler.SendMessage)
			protected.Get("/chat/{threadId}", chatHandler.GetChatHistory)

			protected.Get("/conversations", convHandler.GetConversations)
			protected.Post("/conversations", convHandler.CreateConversation)
			protected.Get("/conversations/{conversationId}", convHandler.GetConversation)
			protected.Get("/conversations/{conversationId}/messages", convHandler.GetMessages)
			protected.Delete("/conversations/{conversationId}", convHandler.DeleteConversation)

			protected.Post("/upload/storage", uploadHandler.UploadToStorage)
			protected.Post("/documents/upload", uploadHandler.UploadDocument)
			protected.Get("/documents", uploadHandler.GetDocuments)

			protected.Post("/gemini/quiz", genHandler.GenerateQuiz)
			protected.Post("/gemini/studynotes", genHandler.GenerateStudyNotes)

			protected.Get("/courses", courseHandler.ListCourses)
			protected.Post("/courses", courseHandler.CreateCourse)
			protected.Get("/courses/{courseId}", courseHandler.GetCourse)
			protected.Put("/courses/{courseId}", courseHandler.UpdateCourse)
			protected.Delete("/courses/{courseId}", courseHandler.DeleteCourse)

			protected.Get("/assignments", assignmentHandler.ListAssignments)
			protected.Post("/assignments", assignmentHandler.CreateAssignment)
			protected.Get("/assignments/{assignmentId}", assignmentHandler.GetAssignment)
			protected.Put("/assignments/{assignmentId}", assignmentHandler.UpdateAssignment)
			protected.Delete("/assignments/{assignmentId}", assignmentHandler.DeleteAssignment)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
