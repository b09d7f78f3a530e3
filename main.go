package main

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"
	"github.com/gofiber/template/html/v2"
	"github.com/quangnv/accountd/internal/audit"
	"github.com/quangnv/accountd/internal/common"
	"github.com/quangnv/accountd/internal/config"
	"github.com/quangnv/accountd/internal/handlers/web"
	"github.com/quangnv/accountd/internal/mail"
	"github.com/quangnv/accountd/internal/middlewares"
	"github.com/quangnv/accountd/internal/middlewares/csrf"
	"github.com/quangnv/accountd/internal/middlewares/sessions"
	"github.com/quangnv/accountd/internal/render"
	"github.com/quangnv/accountd/internal/tokens"
	"github.com/quangnv/accountd/internal/users"
	"github.com/quangnv/accountd/model"
	"github.com/quangnv/accountd/params"
	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "accountd - user account and authentication server"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
		{
			Name:  "gensecret",
			Usage: "Generate a random secret for token.secret",
			Action: func(ctx *cli.Context) error {
				secret, err := common.GenerateSecret(64)
				if err != nil {
					return err
				}
				fmt.Println(secret)
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if sqlDB, err := db.DB(); err == nil {
		if dbConfig.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
		}
		if dbConfig.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
		}
		if dbConfig.ConnMaxIdleTime > 0 {
			sqlDB.SetConnMaxIdleTime(time.Duration(dbConfig.ConnMaxIdleTime) * time.Second)
		}
		if dbConfig.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Second)
		}
	}

	if err := db.AutoMigrate(model.Models...); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

func mustInitHtmlEngine(templateDir string) *html.Engine {
	var htmlEngine *html.Engine
	if templateDir != "" {
		htmlEngine = html.NewFileSystem(http.Dir(templateDir), ".html")
	} else {
		renderFS, _ := fs.Sub(templateFS, "templates")
		htmlEngine = html.NewFileSystem(http.FS(renderFS), ".html")
	}
	return htmlEngine
}

func mustInitMailSender(mailCfg config.MailConfig) mail.MailSender {
	if mailCfg.Backend == "" {
		log.Fatal("Missing mail sender backend")
	}
	if mailCfg.Backend == "smtp" {
		sender, err := mail.NewSMTPMailSender(mailCfg.SMTP, mailCfg.From)
		if err != nil {
			log.Fatalf("Could not initialize SMTP mail sender: %v", err)
		}
		return sender
	}
	log.Fatalf("Unsupported mail sender backend %s", mailCfg.Backend)
	return nil
}

func mustInitSessionStorage(cfg *config.Config) (fiber.Storage, *redis.Storage) {
	switch cfg.Session.Backend {
	case "redis":
		redisStorage := redis.New(redis.Config{
			URL:           cfg.Redis.URL,
			PoolSize:      cfg.Redis.PoolSize,
			IsClusterMode: cfg.Redis.ClusterMode,
		})
		return redisStorage, redisStorage
	case "memory":
		return memory.New(memory.Config{GCInterval: 10 * time.Second}), nil
	}
	log.Fatalf("Unsupported session backend %s", cfg.Session.Backend)
	return nil, nil
}

func setupWebRoutes(
	router fiber.Router,
	staticDir string,
	sessionConfig sessions.Config,
	userService *users.UserService,
	mailSender mail.MailSender) {

	// handlers
	var (
		authHandler            = web.NewAuthHandler(userService)
		loginHandler           = web.NewLoginHandler(userService)
		registerHandler        = web.NewRegisterHandler(userService, mailSender)
		resetPasswordHandler   = web.NewResetPasswordHandler(userService, mailSender)
		accountSettingsHandler = web.NewAccountSettingsHandler(userService)
		profileHandler         = web.NewProfileHandler(userService)
	)

	// routes
	router.Static("/static", staticDir)
	router.Use(sessions.New(sessionConfig))
	router.Use(csrf.New(csrf.Config{}))
	router.Get("/", authHandler.GetHome)
	router.Get("/login", loginHandler.GetLogin)
	router.Post("/login", loginHandler.PostLogin)
	router.Post("/logout", loginHandler.PostLogout)
	router.Get("/register", registerHandler.GetRegister)
	router.Post("/register", registerHandler.PostRegister)
	router.Get("/activate/:uid/:token", registerHandler.GetActivate)
	router.Post("/resend-confirmation", registerHandler.PostResendConfirmation)
	router.Get("/forgot-password", resetPasswordHandler.GetForgotPassword)
	router.Post("/forgot-password", resetPasswordHandler.PostForgotPassword)
	router.Get("/reset/:uid/:token", resetPasswordHandler.GetResetPassword)
	router.Post("/reset/:uid/:token", resetPasswordHandler.PostResetPassword)
	router.Get("/account/change-password", accountSettingsHandler.GetChangePassword)
	router.Post("/account/change-password", accountSettingsHandler.PostChangePassword)
	router.Get("/profile", profileHandler.GetProfile)
	router.Post("/profile", profileHandler.PostProfile)
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	globalVars := fiber.Map{
		"siteName": cfg.SiteName,
		"baseURL":  cfg.BaseURL,
	}

	htmlEngine := mustInitHtmlEngine(cfg.TemplateDir)
	if err := render.Initialize(globalVars, cfg.TemplateDir); err != nil {
		slog.Error("Could not initialize page templates", "error", err)
		return err
	}
	mailSender := mustInitMailSender(cfg.Mail)
	db := mustInitDatabase(cfg.MySQL)
	sessionStorage, redisStorage := mustInitSessionStorage(cfg)
	audit.Initialize(audit.NewAuditEventRepository(db))

	// repositories and services
	var (
		userRepo    = users.NewUserRepository(db)
		issuer      = tokens.NewIssuer(cfg.Token.Secret, cfg.Token.BucketSize, cfg.Token.MaxAgeBuckets)
		userService = users.NewUserService(userRepo, issuer)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		Views:         htmlEngine,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	router.Use(middlewares.InjectGlobalVars(globalVars))
	setupWebRoutes(
		router,
		cfg.StaticDir,
		sessions.Config{
			Storage:        sessionStorage,
			SessionMaxAge:  cfg.Session.SessionMaxAge,
			CookieSecure:   cfg.Session.CookieSecure,
			CookieHttpOnly: cfg.Session.CookieHttpOnly,
			CookieName:     cfg.Session.CookieName,
		},
		userService,
		mailSender,
	)

	var rdb goredis.UniversalClient
	if redisStorage != nil {
		rdb = redisStorage.Conn()
	}
	go startHealthCheckServer(params.HealthCheckServerAddr, rdb, db)

	return router.Listen(cfg.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
