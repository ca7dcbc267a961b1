package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/blog-admin-backend/api"
	"github.com/rpupo63/blog-admin-backend/authz"
	"github.com/rpupo63/blog-admin-backend/config"
	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/rpupo63/blog-admin-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}
	c := config.New()

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := openDatabase(c, newLogger)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		fmt.Println("Generating models and query helpers...")
		if err := models.GenerateModels(db, database.Migrate); err != nil {
			fmt.Printf("Error generating models: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		fmt.Println("Generating column mismatch report...")
		models.GenerateColumnMismatchReport(db)
		return
	}

	if err := database.Migrate(db); err != nil {
		fmt.Printf("Error migrating database: %v\n", err)
		os.Exit(1)
	}

	if config.GetBool(c, "ISSUE_ADMIN_TOKEN", false) {
		issueAdminToken(c)
		return
	}

	covers, err := services.NewCoverStorage(context.Background(), c)
	if err != nil {
		fmt.Printf("Error initializing cover storage: %v\n", err)
		os.Exit(1)
	}

	opts := []api.RouterOption{api.WithConfig(c), api.WithCoverStorage(covers)}
	if addr := config.GetString(c, "REDIS_ADDR", ""); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.GetString(c, "REDIS_PASSWORD", ""),
		})
		defer client.Close()
		opts = append(opts, api.WithRedis(client))
	}

	// Start and listenToInterrupt each send once; buffered so neither blocks after shutdown
	errChannel := make(chan error, 2)

	server, err := api.NewServer(database.New(db), opts...)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// openDatabase connects to the database named by DB_TYPE and checks the connection.
func openDatabase(c map[string]string, gormLogger logger.Interface) (*gorm.DB, error) {
	dbType := config.GetString(c, "DB_TYPE", "postgres")
	fmt.Printf("DB_TYPE: %s\n", dbType)

	var db *gorm.DB
	var err error
	switch dbType {
	case "postgres", "supa":
		connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			config.GetString(c, "DB_HOST", "localhost"),
			config.GetString(c, "DB_USER", ""),
			config.GetString(c, "DB_PASSWORD", ""),
			config.GetString(c, "DB_NAME", ""),
			config.GetString(c, "DB_PORT", "5432"),
			config.GetString(c, "DB_SSLMODE", sslModeFor(dbType)),
		)
		fmt.Println("Connecting to postgres database...")
		db, err = database.OpenPostgres(connStr, gormLogger)
		if err != nil {
			return nil, err
		}
		if err := database.UseReplica(db, config.GetString(c, "DB_REPLICA_DSN", "")); err != nil {
			return nil, fmt.Errorf("register replica: %w", err)
		}
	case "sqlite":
		path := config.GetString(c, "SQLITE_PATH", "blog-admin.db")
		fmt.Printf("Opening sqlite database %s...\n", path)
		db, err = database.OpenSQLite(path, gormLogger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test connection: %w", err)
	}
	return db, nil
}

// supabase only accepts TLS connections
func sslModeFor(dbType string) string {
	if dbType == "supa" {
		return "require"
	}
	return "disable"
}

// issueAdminToken prints a token that may perform every blog action for a day.
func issueAdminToken(c map[string]string) {
	verifier, err := authz.NewTokenVerifier(config.GetString(c, "JWT_SECRET", ""), config.GetString(c, "JWT_ISSUER", ""))
	if err != nil {
		fmt.Printf("Error issuing token: %v\n", err)
		os.Exit(1)
	}

	token, err := verifier.Issue(authz.Principal{Subject: "admin", Permissions: []string{"*"}}, 24*time.Hour)
	if err != nil {
		fmt.Printf("Error issuing token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
