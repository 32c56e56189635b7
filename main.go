package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"github.com/backsoul/studytrack/pkg/auth"
	"github.com/backsoul/studytrack/pkg/handlers"
	"github.com/backsoul/studytrack/pkg/redis"
	"github.com/backsoul/studytrack/pkg/services"
	"github.com/backsoul/studytrack/pkg/websocket"
)

var (
	redisClient     *redis.RedisClient
	tokenManager    *auth.Manager
	questionService *services.QuestionService
	sessionService  *services.SessionService
	historyService  *services.HistoryService
	progressService *services.ProgressService
	userService     *services.UserService
	authHandler     *handlers.AuthHandler
	quizHandler     *handlers.QuizHandler
	sessionHandler  *handlers.SessionHandler
	theoryHandler   *handlers.TheoryHandler
	hub             *websocket.Hub
)

func main() {
	log.Println("🚀 Starting StudyTrack server")

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using environment variables")
	}

	initRedis()
	initServices()
	seedData()

	server := &fasthttp.Server{
		Handler: requestHandler,
		Name:    "StudyTrack Server",
	}

	addr := ":" + getEnv("PORT", "8080")
	log.Printf("📚 StudyTrack API: http://localhost%s/api", addr)
	log.Printf("🔧 API Health: http://localhost%s/api/health", addr)
	log.Println("🔄 Press Ctrl+C to stop the server")

	if err := server.ListenAndServe(addr); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}

func initRedis() {
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	redisDB := 0

	log.Printf("🔌 Connecting to Redis at %s...", redisAddr)
	redisClient = redis.NewRedisClient(redisAddr, redisPassword, redisDB)
}

func initServices() {
	log.Println("⚙️  Initializing services...")

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Fatal("❌ JWT_SECRET is not set")
	}
	tokenTTL := time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour
	tokenManager = auth.NewManager(jwtSecret, tokenTTL)

	hub = websocket.NewHub()
	go hub.Run()

	submitURL := getEnv("SUBMIT_URL", "http://localhost:"+getEnv("PORT", "8080")+"/api/quiz/submit")
	submitClient := services.NewSubmitClient(submitURL)

	quizBudget := getEnvInt("QUIZ_TIME_LIMIT_SECONDS", 200)

	questionService = services.NewQuestionService(redisClient, redisClient)
	sessionService = services.NewSessionService(redisClient, submitClient, hub, quizBudget)
	historyService = services.NewHistoryService(redisClient)
	progressService = services.NewProgressService(redisClient)
	userService = services.NewUserService(redisClient, tokenManager)

	authHandler = handlers.NewAuthHandler(userService)
	quizHandler = handlers.NewQuizHandler(questionService, historyService)
	sessionHandler = handlers.NewSessionHandler(sessionService, hub)
	theoryHandler = handlers.NewTheoryHandler(progressService)
}

func seedData() {
	log.Println("📚 Loading seed data...")

	count, err := questionService.BankCount()
	if err == nil && count > 0 {
		log.Printf("✅ %d question banks already in Redis", count)
	} else if err := questionService.LoadBanksFromFile(getEnv("QUESTIONS_FILE", "data/questions.json")); err != nil {
		log.Printf("⚠️ Error loading question banks: %v", err)
		log.Println("💡 The server will keep running. Load banks with POST /api/quiz/reload")
	}

	if err := progressService.LoadTopicsFromFile(getEnv("TOPICS_FILE", "data/topics.json")); err != nil {
		log.Printf("⚠️ Error loading topic catalogs: %v", err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	log.Printf("📡 %s %s", method, path)

	ctx.Response.Header.Set("Server", "StudyTrack-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")

	// CORS headers for development
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if method == "OPTIONS" {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	protected := tokenManager.Protected

	switch {
	// Health
	case path == "/api/health":
		handleHealth(ctx)

	// Auth
	case path == "/api/auth/register" && method == "POST":
		authHandler.Register(ctx)
	case path == "/api/auth/login" && method == "POST":
		authHandler.Login(ctx)
	case path == "/api/auth/profile" && method == "GET":
		protected(authHandler.GetProfile)(ctx)

	// Theory learning paths
	case path == "/api/theory/topics" && method == "GET":
		protected(theoryHandler.GetTopics)(ctx)
	case path == "/api/theory/progress" && method == "GET":
		protected(theoryHandler.GetProgress)(ctx)
	case path == "/api/theory/progress" && method == "POST":
		protected(theoryHandler.UpdateProgress)(ctx)

	// Quiz generation, grading and history
	case path == "/api/quiz/subjects" && method == "GET":
		protected(quizHandler.GetSubjects)(ctx)
	case path == "/api/quiz/generate" && method == "POST":
		protected(quizHandler.GenerateQuiz)(ctx)
	case path == "/api/quiz/submit" && method == "POST":
		protected(quizHandler.SubmitReport)(ctx)
	case path == "/api/quiz/history" && method == "GET":
		protected(quizHandler.GetHistory)(ctx)
	case path == "/api/quiz/bookmarked" && method == "GET":
		protected(quizHandler.GetBookmarked)(ctx)
	case path == "/api/quiz/reload" && method == "POST":
		protected(handleReloadBanks)(ctx)

	// Quiz session controller
	case path == "/api/quiz/load" && method == "POST":
		protected(sessionHandler.LoadSession)(ctx)
	case path == "/api/quiz/session" && method == "GET":
		protected(sessionHandler.GetSession)(ctx)
	case path == "/api/quiz/session" && method == "DELETE":
		protected(sessionHandler.AbandonSession)(ctx)
	case path == "/api/quiz/answer" && method == "POST":
		protected(sessionHandler.SelectAnswer)(ctx)
	case path == "/api/quiz/bookmark" && method == "POST":
		protected(sessionHandler.ToggleBookmark)(ctx)
	case path == "/api/quiz/submit-session" && method == "POST":
		protected(sessionHandler.SubmitSession)(ctx)

	// WebSocket session events
	case path == "/ws":
		sessionHandler.HandleWebSocket(ctx)

	default:
		serve404(ctx)
	}
}

func handleHealth(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	if err := redisClient.HealthCheck(); err != nil {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		ctx.SetBodyString(`{"success": false, "error": "redis unavailable"}`)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(`{"success": true, "message": "ok"}`)
}

func handleReloadBanks(ctx *fasthttp.RequestCtx) {
	if err := questionService.LoadBanksFromFile(getEnv("QUESTIONS_FILE", "data/questions.json")); err != nil {
		ctx.Response.Header.Set("Content-Type", "application/json")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success": false, "error": "error reloading question banks"}`)
		return
	}
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(`{"success": true, "message": "question banks reloaded"}`)
}

func serve404(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetBodyString(`{"success": false, "error": "route not found"}`)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("⚠️ Invalid value for %s, using %d", key, defaultValue)
	}
	return defaultValue
}
