package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yyzahran/Recipe-App/internal/pkg/config"
	"github.com/yyzahran/Recipe-App/internal/recipes/domain/models"
	"github.com/yyzahran/Recipe-App/internal/recipes/services/authservice"
	"github.com/yyzahran/Recipe-App/internal/recipes/services/recipeservice"
	"github.com/yyzahran/Recipe-App/pkg/logger"
)

type Server struct {
	serv          *http.Server
	recipeService RecipeService
	authService   AuthService
	media         Media
	maxUpload     int64
}

type RecipeService interface {
	CreateRecipe(ctx context.Context, userID int64, req recipeservice.CreateRecipeRequest) (models.Recipe, error)
	GetRecipe(ctx context.Context, userID, recipeID int64) (models.Recipe, error)
	ListRecipes(context.Context, recipeservice.ListRecipesRequest) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, recipeID int64, req recipeservice.UpdateRecipeRequest) (models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, recipeID int64) error
	UploadImage(ctx context.Context, userID, recipeID int64, data []byte, contentType string) (models.Recipe, error)
	GetTags(ctx context.Context, userID int64, assignedOnly bool) ([]models.Tag, error)
	UpdateTag(ctx context.Context, userID, tagID int64, name string) error
	DeleteTag(ctx context.Context, userID, tagID int64) error
	GetIngredients(ctx context.Context, userID int64, assignedOnly bool) ([]models.Ingredient, error)
	UpdateIngredient(ctx context.Context, userID, ingredientID int64, name string) error
	DeleteIngredient(ctx context.Context, userID, ingredientID int64) error
	Shutdown(context.Context) error
}

type AuthService interface {
	CreateUser(context.Context, authservice.CreateUserRequest) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Auth(token string) (int64, error)
	GetUser(ctx context.Context, userID int64) (models.User, error)
	UpdateUser(ctx context.Context, userID int64, req authservice.UpdateUserRequest) (models.User, error)
}

// Media resolves stored media keys to served URLs and exposes the directory
// the media file server reads from.
type Media interface {
	URL(key string) string
	Dir() string
}

const defaultMaxUpload = 10 << 20

func New(cfg config.Server, mediaCfg config.Media,
	rs RecipeService, authService AuthService, media Media, lg logger.Logger,
) *Server {
	var s Server

	s.recipeService = rs
	s.authService = authService
	s.media = media

	s.maxUpload = mediaCfg.MaxUploadBytes
	if s.maxUpload == 0 {
		s.maxUpload = defaultMaxUpload
	}

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      s.Routes(lg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &s
}

func (s *Server) Routes(lg logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(lg))

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/create", s.createUser)
		r.Post("/user/token", s.createToken)

		r.Get("/health", s.health)
		r.Get("/docs", s.docs)
		r.Get("/docs/openapi.yaml", s.docsSchema)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/user/me", s.getMe)
			r.Patch("/user/me", s.updateMe)

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", s.listRecipes)
				r.Post("/", s.createRecipe)
				r.Get("/{id}", s.getRecipe)
				r.Put("/{id}", s.updateRecipe)
				r.Patch("/{id}", s.updateRecipe)
				r.Delete("/{id}", s.deleteRecipe)
				r.Post("/{id}/image", s.uploadRecipeImage)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", s.listTags)
				r.Patch("/{id}", s.updateTag)
				r.Delete("/{id}", s.deleteTag)
			})

			r.Route("/ingredients", func(r chi.Router) {
				r.Get("/", s.listIngredients)
				r.Patch("/{id}", s.updateIngredient)
				r.Delete("/{id}", s.deleteIngredient)
			})
		})
	})

	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(s.media.Dir()))))

	return r
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) docs(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "./docs/index.html")
}

func (s *Server) docsSchema(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "./docs/openapi.yaml")
}
