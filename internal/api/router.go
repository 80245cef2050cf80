package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fitslot/trainer-booking-backend/internal/auth"
	"github.com/fitslot/trainer-booking-backend/internal/offering"
	offeringHttp "github.com/fitslot/trainer-booking-backend/internal/offering/http"
	"github.com/fitslot/trainer-booking-backend/internal/reservation"
	reservationHttp "github.com/fitslot/trainer-booking-backend/internal/reservation/http"
	"github.com/fitslot/trainer-booking-backend/internal/user"
	userHttp "github.com/fitslot/trainer-booking-backend/internal/user/http"
)

// Config holds everything the router needs to assemble middleware and
// register module routes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService        user.Service
	OfferingService    offering.Service
	ReservationService reservation.Service
	JWTManager         *auth.JWTManager
}

// NewRouter initializes the HTTP router engine: global middleware
// (CORS, Logger, Recovery), auth middleware, and the /v1 route tree.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	optionalAuth := auth.OptionalAuth(cfg.JWTManager)
	providerOnly := auth.RequireRole(user.RoleProvider)
	consumerOnly := auth.RequireRole(user.RoleConsumer)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	offeringHandler := offeringHttp.NewHandler(cfg.OfferingService)
	reservationHandler := reservationHttp.NewHandler(cfg.ReservationService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		offeringHttp.RegisterRoutes(v1, offeringHandler, authMiddleware, optionalAuth, providerOnly)
		reservationHttp.RegisterRoutes(v1, reservationHandler, authMiddleware, consumerOnly)
	}

	return r
}
