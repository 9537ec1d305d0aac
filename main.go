package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kboard/auth"
	"kboard/config"
	"kboard/database"
	"kboard/firebase"
	"kboard/handlers"
	"kboard/services"
	"kboard/utilities"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	utilities.InitLogger(cfg.LogDebug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectPostgres(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	avatars, err := newAvatarStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Error initializing avatar storage: %v", err)
	}

	store := database.NewStore(db)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService([]byte(cfg.TokenSecret), cfg.TokenTTL)
	projects := services.NewProjectService(store, store)
	h := handlers.NewHandler(
		services.NewAuthService(store, hasher, tokens, avatars),
		services.NewUserService(store, hasher, avatars),
		projects,
		services.NewTaskService(store, projects),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(h, tokens, store, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utilities.LogError(err, "Server shutdown")
		}
	}()

	utilities.LogInfo("Server started on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
	utilities.LogInfo("Server stopped")
}

// newAvatarStore returns the Firebase Storage backed store, or a store that
// rejects uploads when none is configured.
func newAvatarStore(ctx context.Context, cfg config.Config) (services.AvatarStore, error) {
	if !cfg.AvatarsEnabled() {
		utilities.LogWarn("Avatar uploads disabled: FIREBASE_CREDENTIALS_PATH or AVATAR_BUCKET not set")
		return services.NoAvatars{}, nil
	}
	app, err := firebase.InitializeFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.AvatarBucket)
	if err != nil {
		return nil, err
	}
	return firebase.NewAvatarStorage(ctx, app, cfg.AvatarBucket, cfg.AvatarBucketURL)
}
