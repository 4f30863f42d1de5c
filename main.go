package main

import (
	"context"
	"log"
	"strings"
	"studio/auth"
	"studio/config"
	"studio/db"
	"studio/gallery"
	"studio/handlers"
	"studio/metrics"
	"studio/models"
	"studio/processing"
	"studio/push"
	"studio/storage"
	"studio/store"
	"studio/utils"
	"studio/web"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName     = "token"
	sessionExpirationTime = 365 * 86400 // 1 year
	proofNotifyEvery      = 2 * time.Minute
	thumbCacheTime        = 3600
)

func createAdmin() {
	if config.ADMIN_EMAIL == "" || config.ADMIN_PASSWORD == "" {
		return
	}
	var count int64
	if err := db.Instance.Model(&models.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	admin, err := models.UserCreate(db.Instance, "Admin", config.ADMIN_EMAIL, config.ADMIN_PASSWORD)
	if err != nil {
		log.Fatalf("Cannot create admin user: %v", err)
	}
	if err = db.Instance.Create(&models.Grant{UserID: admin.ID, Permission: models.PermissionAdmin}).Error; err != nil {
		log.Fatalf("Cannot grant admin permission: %v", err)
	}
	log.Printf("Admin user %s created", admin.Email)
}

func main() {
	db.Init()
	if err := models.Migrate(db.Instance); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	createAdmin()
	storage.Init(db.Instance, config.DEFAULT_BUCKET_DIR)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	processor := processing.NewProcessor(db.Instance, config.THUMB_CACHE_ENTRIES)
	if err := processor.Init(uint(config.THUMB_SIZE)); err != nil {
		log.Fatalf("Processing init error: %v", err)
	}
	go processor.StartProcessing(ctx)

	notifier := push.NewProofNotifier(db.Instance, proofNotifyEvery)
	go notifier.Start(ctx)
	reminders, err := push.StartExpiryReminders(db.Instance, config.EXPIRY_REMINDER_SCHEDULE, config.EXPIRY_REMINDER_DAYS)
	if err != nil {
		log.Fatalf("Expiry reminders error: %v", err)
	}
	defer reminders.Stop()

	repo := store.New(db.Instance)
	service := gallery.NewService(gallery.Deps{
		Galleries: repo,
		Grants:    repo,
		Sessions:  repo,
		Proofs:    repo,
		Photos:    repo,
		Images:    processor,
		Events:    gallery.Sinks{metrics.Recorder{}, handlers.Live, notifier},
	}, gallery.Options{
		PageSize:    config.PHOTOS_PAGE_SIZE,
		MaxPageSize: config.PHOTOS_MAX_PAGE_SIZE,
		BulkMax:     config.BULK_DOWNLOAD_MAX,
		SessionIdle: config.GALLERY_SESSION_IDLE,
		ThumbSize:   uint(config.THUMB_SIZE),
	})
	handlers.Setup(service, processor)
	if err = handlers.RegisterValidators(); err != nil {
		log.Fatalf("Validator error: %v", err)
	}

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "PUT", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", web.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", web.SessionHeader},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))

	cookieStore := gormsessions.NewStore(db.Instance, true, []byte(config.SESSION_STORE_KEY))
	cookieStore.Options(sessions.Options{Path: "/", MaxAge: sessionExpirationTime, HttpOnly: true})
	router.Use(sessions.Sessions(sessionCookieName, cookieStore))
	if !config.DEBUG_MODE {
		// Archives and JPEGs are already compressed
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{
			`^/galleries/\d+/(download|bulk-download)`,
			`^/galleries/\d+/photos/\d+/thumb`,
		})))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default, individual end-points can override that
	// Custom Auth Router
	authRouter := &auth.Router{Base: router}
	// Bucket handlers
	authRouter.GET("/bucket/list", handlers.BucketList, models.PermissionAdmin)
	authRouter.POST("/bucket/save", handlers.BucketSave, models.PermissionAdmin)
	// User info handlers
	router.POST("/user/login", handlers.UserLogin)
	authRouter.POST("/user/save", handlers.UserSave, models.PermissionAdmin)
	authRouter.GET("/user/status", handlers.UserGetStatus)
	authRouter.POST("/user/logout", handlers.UserLogout)
	authRouter.POST("/user/push-token", handlers.UserPushToken)
	// Clients
	authRouter.POST("/client/save", handlers.ClientSave, models.PermissionManageClients)
	authRouter.GET("/client/list", handlers.ClientList, models.PermissionManageClients)
	// Shoots, albums and photos
	authRouter.GET("/shoot/list", handlers.ShootList, models.PermissionManageGalleries)
	authRouter.POST("/shoot/create", handlers.ShootCreate, models.PermissionManageGalleries)
	authRouter.POST("/album/create", handlers.AlbumCreate, models.PermissionManageGalleries)
	authRouter.GET("/album/photos", handlers.AlbumPhotos, models.PermissionManageGalleries)
	authRouter.PUT("/photo/upload", handlers.PhotoUpload, models.PermissionManageGalleries)
	// Galleries
	authRouter.GET("/gallery/list", handlers.GalleryList, models.PermissionManageGalleries)
	authRouter.POST("/gallery/save", handlers.GallerySave, models.PermissionManageGalleries)
	authRouter.POST("/gallery/delete", handlers.GalleryDelete, models.PermissionManageGalleries)
	authRouter.POST("/gallery/albums", handlers.GalleryAlbums, models.PermissionManageGalleries)
	authRouter.POST("/gallery/grant", handlers.GalleryGrant, models.PermissionManageGalleries)
	authRouter.POST("/gallery/revoke", handlers.GalleryRevoke, models.PermissionManageGalleries)
	authRouter.GET("/gallery/proofs", handlers.GalleryProofs, models.PermissionManageGalleries)
	authRouter.GET("/gallery/live", handlers.Live.Handler, models.PermissionManageGalleries)

	/*
	 *	Client facing gallery
	 */
	web.Routes(router, thumbCacheTime)
	// Misc
	router.GET("/metrics", metrics.Handler())
	router.GET("/robots.txt", web.DisallowRobots)

	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
