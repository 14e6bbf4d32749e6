// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auradating/aura-backend/internal/assessment"
	"github.com/auradating/aura-backend/internal/auth"
	"github.com/auradating/aura-backend/internal/common/clock"
	"github.com/auradating/aura-backend/internal/common/database"
	"github.com/auradating/aura-backend/internal/config"
	"github.com/auradating/aura-backend/internal/conversation"
	"github.com/auradating/aura-backend/internal/gate"
	"github.com/auradating/aura-backend/internal/matchwindow"
	"github.com/auradating/aura-backend/internal/notify"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Aura Match Engine API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	log.Println("✅ Configuration loaded")

	// 3. Validate configuration
	log.Println("\n✔️  Step 3: Validating configuration...")
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 4. Connect to PostgreSQL
	log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 5. Connect to Redis (optional score cache)
	log.Println("\n📮 Step 5: Connecting to Redis...")
	redisClient, err := database.NewRedisClientFromURL(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v), continuing without the score cache", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("✅ Connected to Redis successfully")
	}

	// 6. Run database migrations
	log.Println("\n🔨 Step 6: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	systemClock := clock.NewSystem()

	// 7. Initialize notification delivery
	log.Println("\n🔔 Step 7: Initializing notifications...")

	var emailProvider notify.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = notify.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
		log.Println("   ✅ Using SendGrid for emails")
	default:
		emailProvider = notify.NewMockEmailProvider()
		log.Println("   ⚠️  Using mock email provider (development mode)")
	}

	var smsProvider notify.SMSProvider
	switch cfg.SMSProvider {
	case "twilio":
		smsProvider = notify.NewTwilioSMSProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		log.Println("   ✅ Using Twilio for SMS")
	default:
		smsProvider = notify.NewMockSMSProvider()
		log.Println("   ⚠️  Using mock SMS provider (development mode)")
	}

	notifier := notify.NewProviderService(emailProvider, smsProvider, notify.NewPostgresResolver(db))
	log.Println("✅ Notifications initialized")

	// 8. Initialize the gate module
	log.Println("\n🚪 Step 8: Initializing gate module...")

	gateRepo := gate.NewRepository(db)

	var gateUploads gate.UploadService
	if cfg.UseS3 {
		gateUploads, err = gate.NewS3UploadService(cfg.S3BucketName, cfg.AWSRegion)
		if err != nil {
			log.Printf("⚠️  Failed to init S3 for verification docs, using local: %v", err)
			gateUploads = gate.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		} else {
			log.Println("   ✅ Using S3 for verification documents")
		}
	} else {
		gateUploads = gate.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		log.Println("   ✅ Using local storage for verification documents")
	}

	gatePolicy := gate.Policy{
		MedianWealthThreshold:   cfg.MedianWealthThreshold,
		MedianIncomeThreshold:   cfg.MedianIncomeThreshold,
		MedianWealthFloor:       cfg.MedianWealthFloor,
		MedianCombinedThreshold: cfg.MedianCombinedThreshold,
		MinExplanationLength:    cfg.MinExplanationLength,
	}

	gateService := gate.NewService(gateRepo, gateUploads, gatePolicy, systemClock)
	gateHandler := gate.NewHandler(gateService)
	log.Println("✅ Gate module initialized")

	// 9. Initialize the assessment module
	log.Println("\n📊 Step 9: Initializing assessment module...")

	assessmentRepo := assessment.NewRepository(db)

	if cfg.AutoLoadQuestions {
		if err := assessment.LoadQuestionBank(context.Background(), assessmentRepo, cfg.QuestionBankPath); err != nil {
			log.Printf("⚠️  Question bank load failed: %v", err)
		}
	}

	weights := assessment.Weights{
		Values:      cfg.WeightValues,
		Lifestyle:   cfg.WeightLifestyle,
		Personality: cfg.WeightPersonality,
		Attachment:  cfg.WeightAttachment,
		Political:   cfg.WeightPolitical,
	}

	assessmentService := assessment.NewService(
		assessmentRepo,
		assessment.NewGateReader(gateRepo),
		redisClient,
		systemClock,
		weights,
		cfg.DealbreakerCap,
		cfg.MinSharedQuestions,
		cfg.CompatibilityCacheTTL,
	)
	assessmentHandler := assessment.NewHandler(assessmentService)
	log.Println("✅ Assessment module initialized")

	// 10. Initialize the match window module
	log.Println("\n⏳ Step 10: Initializing match window module...")

	windowRepo := matchwindow.NewRepository(db)
	windowPolicy := matchwindow.Policy{
		InitialWindow:   time.Duration(cfg.WindowInitialHours) * time.Hour,
		Extension:       time.Duration(cfg.WindowExtensionHours) * time.Hour,
		ReminderHorizon: cfg.ReminderHorizon,
	}

	windowService := matchwindow.NewService(
		windowRepo,
		assessmentService,
		conversation.NewCreator(db),
		notifier,
		systemClock,
		windowPolicy,
	)
	windowHandler := matchwindow.NewHandler(windowService)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	matchwindow.NewScheduler(windowService, cfg.WindowSweepInterval).Start(schedulerCtx)
	log.Println("✅ Match window module initialized (expiry sweep running)")

	// 11. Setup routes
	log.Println("\n🛣️  Step 11: Setting up routes...")
	router := mux.NewRouter()

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
		log.Println("   ✅ Static file server configured")
	}

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret, cfg.AdminKeyHash)

	gate.RegisterRoutes(router, gateHandler, authMiddleware)
	log.Println("   ✅ Gate routes registered")

	assessment.RegisterRoutes(router, assessmentHandler, authMiddleware)
	log.Println("   ✅ Assessment routes registered")

	matchwindow.RegisterRoutes(router, windowHandler, authMiddleware)
	log.Println("   ✅ Match window routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 12. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		// Users table: the identity surface this service needs for
		// notification delivery and foreign keys
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE,
			phone VARCHAR(20),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// One gate assessment per user
		`CREATE TABLE IF NOT EXISTS gate_assessments (
			id SERIAL PRIMARY KEY,
			uuid UUID NOT NULL UNIQUE,
			user_id BIGINT NOT NULL UNIQUE,
			income_bracket VARCHAR(40),
			wealth_bracket VARCHAR(40),
			primary_income_source VARCHAR(40),
			owns_rental_property BOOLEAN NOT NULL DEFAULT FALSE,
			employs_others BOOLEAN NOT NULL DEFAULT FALSE,
			lives_off_capital BOOLEAN NOT NULL DEFAULT FALSE,
			economic_class VARCHAR(40),
			economic_values_score DOUBLE PRECISION,
			political_orientation VARCHAR(40),
			wealth_redistribution_view INTEGER,
			worker_ownership_view INTEGER,
			universal_services_view INTEGER,
			housing_rights_view INTEGER,
			billionaire_view INTEGER,
			meritocracy_view INTEGER,
			wealth_contribution_view VARCHAR(40),
			verification_applicable BOOLEAN NOT NULL DEFAULT FALSE,
			reproductive_view VARCHAR(40),
			verification_status VARCHAR(40),
			verification_doc_url TEXT,
			verified_at TIMESTAMP,
			explanation TEXT,
			explanation_reviewed BOOLEAN NOT NULL DEFAULT FALSE,
			review_notes TEXT,
			gate_status VARCHAR(40) NOT NULL,
			rejection_reason VARCHAR(60),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP,
			completed_at TIMESTAMP
		)`,

		// Question bank
		`CREATE TABLE IF NOT EXISTS assessment_questions (
			id SERIAL PRIMARY KEY,
			uuid UUID NOT NULL UNIQUE,
			external_id VARCHAR(100) NOT NULL UNIQUE,
			text TEXT NOT NULL,
			category VARCHAR(40) NOT NULL,
			subcategory VARCHAR(80),
			response_scale VARCHAR(20) NOT NULL,
			inverse BOOLEAN NOT NULL DEFAULT FALSE,
			severity VARCHAR(20),
			display_order INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// One response per user per question
		`CREATE TABLE IF NOT EXISTS assessment_responses (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			question_id BIGINT NOT NULL REFERENCES assessment_questions(id) ON DELETE CASCADE,
			category VARCHAR(40) NOT NULL,
			numeric_answer INTEGER,
			text_answer TEXT,
			importance VARCHAR(20) NOT NULL,
			acceptable_answers BIGINT[],
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP,
			CONSTRAINT unique_user_question UNIQUE(user_id, question_id)
		)`,

		// Cached pair scores, canonical pair key (user_a_id < user_b_id)
		`CREATE TABLE IF NOT EXISTS compatibility_scores (
			id SERIAL PRIMARY KEY,
			uuid UUID NOT NULL UNIQUE,
			user_a_id BIGINT NOT NULL,
			user_b_id BIGINT NOT NULL,
			overall DOUBLE PRECISION NOT NULL,
			values_score DOUBLE PRECISION,
			lifestyle_score DOUBLE PRECISION,
			personality_score DOUBLE PRECISION,
			attachment_score DOUBLE PRECISION,
			political_score DOUBLE PRECISION,
			satisfaction_a DOUBLE PRECISION NOT NULL,
			satisfaction_b DOUBLE PRECISION NOT NULL,
			shared_questions INTEGER NOT NULL DEFAULT 0,
			has_enough_data BOOLEAN NOT NULL DEFAULT FALSE,
			has_mandatory_conflict BOOLEAN NOT NULL DEFAULT FALSE,
			conflict_question_ids BIGINT[],
			profile_a_updated_at TIMESTAMP NOT NULL,
			profile_b_updated_at TIMESTAMP NOT NULL,
			calculated_at TIMESTAMP NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			CONSTRAINT unique_score_pair UNIQUE(user_a_id, user_b_id),
			CONSTRAINT ordered_score_pair CHECK (user_a_id < user_b_id)
		)`,

		// Match decision windows, canonical pair key
		`CREATE TABLE IF NOT EXISTS match_windows (
			id SERIAL PRIMARY KEY,
			uuid UUID NOT NULL UNIQUE,
			user_a_id BIGINT NOT NULL,
			user_b_id BIGINT NOT NULL,
			status VARCHAR(30) NOT NULL,
			user_a_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			user_b_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			user_a_confirmed_at TIMESTAMP,
			user_b_confirmed_at TIMESTAMP,
			expires_at TIMESTAMP NOT NULL,
			extension_used BOOLEAN NOT NULL DEFAULT FALSE,
			extension_requested_by BIGINT,
			match_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
			category_breakdown JSONB,
			has_mandatory_conflict BOOLEAN NOT NULL DEFAULT FALSE,
			conversation_id BIGINT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1,
			CONSTRAINT unique_window_pair UNIQUE(user_a_id, user_b_id),
			CONSTRAINT ordered_window_pair CHECK (user_a_id < user_b_id)
		)`,

		// Conversations opened for confirmed matches
		`CREATE TABLE IF NOT EXISTS match_conversations (
			id SERIAL PRIMARY KEY,
			uuid UUID NOT NULL UNIQUE,
			user_a_id BIGINT NOT NULL,
			user_b_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_conversation_pair UNIQUE(user_a_id, user_b_id)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_gate_status ON gate_assessments(gate_status)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_category ON assessment_questions(category)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_user ON assessment_responses(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_user_a ON compatibility_scores(user_a_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_user_b ON compatibility_scores(user_b_id)`,
		`CREATE INDEX IF NOT EXISTS idx_windows_user_a ON match_windows(user_a_id)`,
		`CREATE INDEX IF NOT EXISTS idx_windows_user_b ON match_windows(user_b_id)`,
		`CREATE INDEX IF NOT EXISTS idx_windows_status ON match_windows(status)`,
		`CREATE INDEX IF NOT EXISTS idx_windows_expires ON match_windows(expires_at)`,
	}

	for i, migration := range migrations {
		log.Printf("   - Running migration %d/%d...", i+1, len(migrations))
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("   ✅ All migrations executed successfully")
	return nil
}
