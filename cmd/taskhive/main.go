package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/mailer"
	"github.com/taskhive-dev/taskhive/internal/router"
	"github.com/taskhive-dev/taskhive/internal/services"
)

type config struct {
	Port              string
	DatabaseURL       string
	JWTSecret         string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPFrom          string
	AllowedOrigins    []string
	StrictCommentAuth bool
}

// Default allowed origins for development
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func loadAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func loadConfig() (config, error) {
	cfg := config{
		Port:         os.Getenv("PORT"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Println("PORT not set, defaulting to 8080")
	}

	if port := os.Getenv("SMTP_PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			return cfg, err
		}
		cfg.SMTPPort = parsed
	} else {
		cfg.SMTPPort = 587
	}

	cfg.AllowedOrigins = loadAllowedOrigins()
	cfg.StrictCommentAuth, _ = strconv.ParseBool(os.Getenv("STRICT_COMMENT_AUTH"))

	return cfg, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret)

	var sender mailer.Sender
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Println("SMTP_HOST not set, outbound email disabled")
	}
	mail := mailer.New(conn, sender)
	defer mail.Wait()

	members := services.NewMembershipResolver(conn)
	identity := services.NewIdentityService(conn, tokens, mail)
	workspaces := services.NewWorkspaceService(conn, members, mail)
	projects := services.NewProjectService(conn, members)
	tasks := services.NewTaskService(conn, members)
	comments := services.NewCommentService(conn, members, cfg.StrictCommentAuth)

	r := router.New(router.Deps{
		Conn:       conn,
		Tokens:     tokens,
		Origins:    cfg.AllowedOrigins,
		Auth:       handlers.NewAuthHandler(identity),
		Workspaces: handlers.NewWorkspaceHandler(workspaces),
		Projects:   handlers.NewProjectHandler(projects),
		Tasks:      handlers.NewTaskHandler(tasks),
		Comments:   handlers.NewCommentHandler(comments, members),
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
