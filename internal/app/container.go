package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fitslot/trainer-booking-backend/internal/api"
	"github.com/fitslot/trainer-booking-backend/internal/auth"
	"github.com/fitslot/trainer-booking-backend/internal/offering"
	"github.com/fitslot/trainer-booking-backend/internal/reservation"
	"github.com/fitslot/trainer-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the
// application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	// Location is the service reference timezone for slot queries.
	Location *time.Location

	SweepInterval time.Duration
	StoreTimeout  time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	Sweeper    *reservation.Sweeper
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Reservation repository first: the offering service reads active
	// reservations through it for availability and edit guards.
	reservationRepo := reservation.NewPgxRepository(cfg.DBPool)

	// Offering module
	offeringRepo := offering.NewPgxRepository(cfg.DBPool)
	offeringService := offering.NewService(offeringRepo, reservationRepo, cfg.Location)

	// Reservation module
	reservationService := reservation.NewService(reservationRepo, offeringRepo, cfg.Location)

	// Auto-finalization sweeper
	sweeper := reservation.NewSweeper(
		reservationService,
		reservationRepo,
		cfg.SweepInterval,
		cfg.StoreTimeout,
		cfg.Logger,
	)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		UserService:        userService,
		OfferingService:    offeringService,
		ReservationService: reservationService,
		JWTManager:         jwtManager,
	})

	return &Container{
		Router:     router,
		Sweeper:    sweeper,
		JWTManager: jwtManager,
	}
}
