package server

import (
	"context"
	"net/http"
	"time"

	"techdeputies/internal/auth"
	"techdeputies/internal/billing"
	"techdeputies/internal/config"
	"techdeputies/internal/course"
	"techdeputies/internal/email"
	"techdeputies/internal/giftcard"
	"techdeputies/internal/plan"
	"techdeputies/internal/settlement"
	"techdeputies/internal/slot"
	"techdeputies/internal/subscription"
	"techdeputies/internal/user"

	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers of every domain package.
type Handlers struct {
	Users         *user.Handler
	Plans         *plan.Handler
	Courses       *course.Handler
	Slots         *slot.Handler
	GiftCards     *giftcard.Handler
	Subscriptions *subscription.Handler
	Settlement    *settlement.Handler
	Billing       *billing.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

func New(cfg *config.Config, h Handlers, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	limited := RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	public := router.Group("/auth")
	public.Use(limited)
	{
		public.POST("/register", h.Users.Register)
		public.POST("/login", h.Users.Login)
		public.POST("/refresh", h.Users.RefreshToken)
	}

	router.GET("/plans", h.Plans.ListPlans)
	router.GET("/plans/:tier", h.Plans.GetPlan)
	router.GET("/courses", h.Courses.ListCourses)
	router.GET("/courses/:courseID", h.Courses.GetCourse)
	router.GET("/slots", h.Slots.ListTimeSlots)
	router.GET("/slots/:slotID", h.Slots.GetTimeSlot)

	router.POST("/gift-cards/check", limited, h.GiftCards.Check)
	router.POST("/webhooks/billing", limited, h.Billing.Webhook)

	authMiddleware := auth.Middleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.Users.GetMe)
		protected.GET("/subscriptions/me", h.Subscriptions.Me)
		protected.GET("/subscriptions", h.Subscriptions.List)

		protected.POST("/gift-cards", h.GiftCards.Create)
		protected.POST("/gift-cards/redeem", h.GiftCards.Redeem)

		protected.POST("/purchases", h.Settlement.PurchaseCourse)
		protected.GET("/purchases", h.Settlement.ListPurchases)
		protected.POST("/slots/:slotID/book", h.Settlement.BookSession)
		protected.POST("/bookings/:bookingID/cancel", h.Settlement.CancelBooking)
		protected.GET("/bookings", h.Settlement.ListBookings)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/courses", h.Courses.CreateCourse)
		admin.POST("/slots", h.Slots.CreateTimeSlot)
		admin.GET("/slots", h.Slots.ListTimeSlots)
		admin.POST("/gift-cards/:code/cancel", h.GiftCards.Cancel)
		admin.GET("/gift-cards/:code/transactions", h.GiftCards.History)
		if emailService != nil {
			admin.GET("/test-email", TestEmail(emailService))
		}
	}

	return &Server{
		router: router,
		config: cfg,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Billing-Signature")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
