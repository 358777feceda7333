// Package app wires the HTTP routes to their handlers
package app

import (
	"context"
	"fmt"
	"time"

	"sharefile/share-api/app/cleanup"
	"sharefile/share-api/app/file"
	"sharefile/share-api/app/plans"
	"sharefile/share-api/app/profile"
	"sharefile/share-api/app/root"
	"sharefile/share-api/app/share"
	"sharefile/share-api/app/subscription"
	"sharefile/share-api/app/user"
	"sharefile/share-api/db"
	"sharefile/share-api/internal"
	"sharefile/share-api/internal/plan"
	"sharefile/share-api/internal/repository"
	"sharefile/share-api/internal/scheduler"
	"sharefile/share-api/internal/service"
	"sharefile/share-api/internal/storage"
	"sharefile/share-api/pkg/middleware"
	"sharefile/share-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

// Room for the multipart envelope around the file itself
const multipartOverhead = 1 << 20

var store = persist.NewMemoryStore(time.Minute)

// NewRouter builds every dependency from the loaded config and returns the
// ready router
func NewRouter(ctx context.Context) (*gin.Engine, *internal.Deps, error) {
	if err := makeLogger(); err != nil {
		return nil, nil, fmt.Errorf("failed to create logger, %w", err)
	}

	conn, err := db.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	objects, err := storage.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize object storage, %w", err)
	}

	d := NewDeps(conn, objects, plan.Default().WithBasicRetention(viper.GetDuration("plans.basic_retention")))
	d.Reconciler.Grace = viper.GetDuration("reconcile.grace")

	if err := startJobs(d); err != nil {
		return nil, nil, err
	}

	return Routes(d), d, nil
}

// NewDeps wires the services on top of a database and an object store
func NewDeps(conn *gorm.DB, objects storage.ObjectStore, plans plan.Table) *internal.Deps {
	files := repository.NewFiles(conn)
	subs := repository.NewSubscriptions(conn)
	shares := service.NewShares(files, objects)

	return &internal.Deps{
		DB:            conn,
		Objects:       objects,
		Plans:         plans,
		Uploader:      service.NewUploader(files, subs, objects, plans),
		Sweeper:       service.NewSweeper(files, subs, objects),
		Reconciler:    service.NewReconciler(files, objects, time.Hour),
		Shares:        shares,
		Subscriptions: service.NewSubscriptions(subs, plans),
		Profiles:      service.NewProfiles(repository.NewProfiles(conn), shares, security.NewArgon()),
	}
}

func startJobs(d *internal.Deps) error {
	sweepEvery := viper.GetDuration("sweeper.interval")
	reconcileEvery := viper.GetDuration("reconcile.interval")

	if sweepEvery == 0 && reconcileEvery == 0 {
		return nil
	}

	s, err := scheduler.New()
	if err != nil {
		return err
	}

	if sweepEvery > 0 {
		err := s.Every("expiry-sweep", sweepEvery, func(ctx context.Context) error {
			return d.Sweeper.Sweep(ctx, time.Now()).Err()
		})
		if err != nil {
			return err
		}
	}

	if reconcileEvery > 0 {
		err := s.Every("orphan-reconcile", reconcileEvery, func(ctx context.Context) error {
			return d.Reconciler.Run(ctx, time.Now()).Err
		})
		if err != nil {
			return err
		}
	}

	s.Start()
	d.Scheduler = s

	return nil
}

// Routes registers every endpoint on a new engine
func Routes(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken", "X-Profile-Password"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD" || c.FullPath() == "/metrics"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 8 << 20

	rateLimit := viper.GetInt("security.rate_limit")

	jwt := middleware.NewJWTMiddleware(viper.GetString("jwt.secret"))
	turnstile := middleware.NewTurnstileMiddleware(middleware.TurnstileConfig{
		Enabled: viper.GetBool("cloudflare.turnstile.enabled"),
		Secret:  viper.GetString("cloudflare.turnstile.secret_token"),
	})
	cronSecret := middleware.NewCronSecretMiddleware(viper.GetString("sweeper.trigger_secret"))
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})
	maxUploadSize := viper.GetInt64("upload.max_size")

	// GET /metrics			-> Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	m := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)
		m.GET("/heartbeat", root.Heartbeat)

		// GET /api/plans		-> Lists the plans with their limits
		m.GET("/plans", cacheFor(300), func(c *gin.Context) { plans.PlanList(c, d) })

		// GET /api/share/:id		-> Opens a shared file and counts the download
		m.GET("/share/:id", rateLimiter, func(c *gin.Context) { share.ShareOpen(c, d) })

	}

	p := m.Group("/profiles", rateLimiter)
	{
		// GET /api/profiles/:id/files	-> Lists someone's files that haven't expired. Needs X-Profile-Password
		p.GET("/:id/files", func(c *gin.Context) { profile.ProfileFiles(c, d) })

		// POST /api/profiles/password	-> Sets the password others need to view the profile
		p.POST("/password", jwt, middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { profile.ProfilePasswordSet(c, d) })
	}

	ff := m.Group("/files", rateLimiter, jwt)
	{
		// GET /api/files		-> Returns a user's files in bulk
		ff.GET("", func(c *gin.Context) { file.FileFetchBulk(c, d) })

		// POST /api/files         	-> Uploads a new file and assigns its expiry
		ff.POST("", middleware.BodySizeLimiter(maxUploadSize+multipartOverhead), func(c *gin.Context) { file.FileUpload(c, d) })

		// GET /api/files/:id		-> Returns a file by it's ID if the user owns it
		ff.GET("/:id", func(c *gin.Context) { file.FileFetch(c, d) })

		// DELETE /api/files/:id	-> Deletes a file owned by a user
		ff.DELETE("/:id", func(c *gin.Context) { file.FileDelete(c, d) })
	}

	u := m.Group("/users", rateLimiter, jwt)
	{
		// GET /api/users/stats		-> Returns the user's plan and how much of it is used
		u.GET("/stats", func(c *gin.Context) { user.UserStats(c, d) })
	}

	s := m.Group("/subscriptions", rateLimiter, jwt, middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/subscriptions	-> Records a paid plan from a transaction ID
		s.POST("", turnstile, func(c *gin.Context) { subscription.SubscriptionActivate(c, d) })

		// GET /api/subscriptions/current -> Returns the plan that applies right now
		s.GET("/current", func(c *gin.Context) { subscription.SubscriptionCurrent(c, d) })
	}

	cl := m.Group("/cleanup", cronSecret)
	{
		// GET|POST /api/cleanup/expired	-> Runs the expiry sweeper once
		cl.GET("/expired", func(c *gin.Context) { cleanup.CleanupExpired(c, d) })
		cl.POST("/expired", func(c *gin.Context) { cleanup.CleanupExpired(c, d) })

		// POST /api/cleanup/orphans	-> Removes stored objects without a file row
		cl.POST("/orphans", func(c *gin.Context) { cleanup.CleanupOrphans(c, d) })

		// GET /api/cleanup/jobs	-> Lists the in process cleanup jobs
		cl.GET("/jobs", func(c *gin.Context) { cleanup.CleanupJobs(c, d) })
	}

	return router
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
