package main

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"roombook/internal/audit"
	"roombook/internal/config"
	"roombook/internal/database"
	"roombook/internal/middleware"
	"roombook/internal/modules/booking"
	"roombook/internal/modules/catalog"
	"roombook/internal/modules/horizon"
	"roombook/internal/notification"
	"roombook/internal/permission"
	"roombook/internal/pkg/response"
	"roombook/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	ruleRepo := repository.NewRecurrenceRuleRepository(db)

	perms := permission.NewChecker(userRepo, roomRepo, orgRepo)
	notifier := notification.NewAsync(notification.NewLogSender())
	recorder := audit.NewRecorder(db)

	materializer := booking.NewMaterializer(bookingRepo, cfg.MaterializeWorkers)
	bookingService := booking.NewService(
		bookingRepo, ruleRepo, roomRepo, orgRepo,
		materializer, perms, notifier, recorder,
		nil, cfg.HorizonBufferDays,
	)
	bookingHandler := booking.NewHandler(bookingService)

	catalogService := catalog.NewService(roomRepo, orgRepo, userRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	extender := horizon.NewExtender(ruleRepo, bookingRepo, nil, cfg.HorizonBufferDays, cfg.HorizonExtendDays)

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.Identity())

	v1 := r.Group("/api/v1")
	{
		catalogHandler.RegisterRoutes(v1)
		bookingHandler.RegisterRoutes(v1)
	}

	internal := r.Group("/internal")
	internal.Use(middleware.InternalTokenAuth())
	{
		internal.POST("/horizon/run", func(c *gin.Context) {
			rep, err := extender.Run(c.Request.Context())
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
				return
			}
			response.Success(c, http.StatusOK, gin.H{"report": rep})
		})
		internal.GET("/audit/:entity/:id", func(c *gin.Context) {
			id, err := parseID(c.Param("id"))
			if err != nil {
				response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
				return
			}
			events, err := recorder.List(c.Request.Context(), c.Param("entity"), id, 0)
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
				return
			}
			response.Success(c, http.StatusOK, gin.H{"events": events})
		})
	}

	// Background extension keeps rule horizons topped up even without the
	// dedicated horizon binary.
	stopHorizon := extender.Schedule(context.Background(), cfg.HorizonInterval)
	defer close(stopHorizon)

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
