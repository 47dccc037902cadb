// File: cafedesk/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafedesk/config"
	"cafedesk/cron"
	"cafedesk/database"
	reservationRepo "cafedesk/database/repository/reservation"
	"cafedesk/handlers"
	"cafedesk/middleware"
	"cafedesk/routes"
	"cafedesk/services/dialogue"
	ai "cafedesk/services/intelligence"
	"cafedesk/services/notification"
	"cafedesk/services/realtime"
	"cafedesk/services/reservation"
	"cafedesk/services/speech"
	"cafedesk/services/telephony"
	"cafedesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Optional backends degrade with a warning; a café line must keep
	// answering calls even when its side services are down.
	if err := database.InitDB(); err != nil {
		logger.Sugar().Warnf("main: mongo unavailable, reservations will be logged only: %v", err)
	}
	if err := utils.InitCache(); err != nil {
		logger.Sugar().Warnf("main: redis unavailable, reply audio will not be cached: %v", err)
	}

	fcmClient, err := utils.FirebaseInit()
	if err != nil {
		logger.Sugar().Warnf("main: firebase unavailable, staff pushes disabled: %v", err)
	}
	notifier := notification.NewStaffNotifier(fcmClient, config.AppConfig.StaffDeviceToken, logger)

	var gen ai.Generator
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gemini, err := ai.NewGeminiClient(key)
		if err != nil {
			logger.Sugar().Warnf("main: gemini unavailable, falling back to keyword rules: %v", err)
		} else {
			gen = gemini
		}
	} else {
		logger.Sugar().Warn("main: no gemini api key set, falling back to keyword rules")
	}

	profile := dialogue.Profile{
		CafeName:             config.AppConfig.CafeName,
		Hours:                config.AppConfig.CafeHours,
		Address:              config.AppConfig.CafeAddress,
		WifiInfo:             config.AppConfig.WifiInfo,
		MenuLink:             config.AppConfig.MenuLink,
		StaffNumber:          config.AppConfig.StaffNumber,
		MaxMisunderstandings: config.AppConfig.MaxMisunderstandings,
	}

	machine := &dialogue.Machine{
		Profile:  profile,
		Classify: &dialogue.ModelClassifier{Gen: gen, Logger: logger},
		Extract:  &dialogue.ModelExtractor{Gen: gen, Logger: logger},
	}
	codec := dialogue.NewStateCodec(config.AppConfig.StateSecret)

	var repo reservationRepo.ReservationRepository
	if database.MongoClient != nil {
		repo = reservationRepo.NewMongoReservationRepo()
	}
	bookingService := &reservation.Service{
		Repo:      repo,
		Notifier:  notifier,
		Reminders: cron.NewReminderClient(),
		Logger:    logger,
	}
	cron.InitReminderWorker(notifier)

	voiceHandler := &handlers.VoiceHandler{
		Machine:  machine,
		Codec:    codec,
		Booking:  bookingService,
		Logger:   logger,
		CallerID: config.AppConfig.TwilioCallerID,
	}

	mediaHandler := buildMediaHandler(profile, gen, logger)
	if config.AppConfig.VoiceMode == "realtime" {
		if mediaHandler == nil {
			logger.Sugar().Fatal("main: realtime voice mode requires twilio credentials and a public host")
		}
		voiceHandler.RealtimeWSURL = handlers.WebsocketURL(config.AppConfig.PublicHost)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	handlerBundle := &handlers.HandlerBundle{
		Voice:    voiceHandler,
		Media:    mediaHandler,
		AudioDir: config.AppConfig.AudioDir,
	}
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// buildMediaHandler assembles the realtime media pipeline. It returns nil
// when the call-update credentials or public host are missing, since the
// session loop cannot inject replies without them.
func buildMediaHandler(profile dialogue.Profile, gen ai.Generator, logger *zap.Logger) *handlers.MediaHandler {
	cfg := config.AppConfig
	if cfg.PublicHost == "" {
		return nil
	}

	twilio, err := telephony.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	if err != nil {
		logger.Sugar().Warnf("main: twilio client unavailable: %v", err)
		return nil
	}

	synth, err := speech.NewGoogleSynthesizer(context.Background(), cfg.GoogleServiceAccountFile, "en-US")
	if err != nil {
		logger.Sugar().Warnf("main: text-to-speech unavailable: %v", err)
		return nil
	}

	var store speech.AudioStore
	if cfg.CloudinaryURL != "" {
		cldStore, err := speech.NewCloudinaryAudioStore(cfg.CloudinaryURL)
		if err != nil {
			logger.Sugar().Warnf("main: cloudinary unavailable, serving audio locally: %v", err)
		} else {
			store = cldStore
		}
	}
	if store == nil {
		store = &speech.LocalAudioStore{Dir: cfg.AudioDir, PublicHost: cfg.PublicHost}
	}

	speaker := &speech.ReplyAudio{
		Synth:  synth,
		Store:  store,
		Cache:  utils.GetCacheClient(),
		TTL:    24 * time.Hour,
		Logger: logger,
	}

	return &handlers.MediaHandler{
		Registry:    realtime.NewRegistry(),
		Transcriber: speech.NewGoogleTranscriber(cfg.GoogleServiceAccountFile, "en-US"),
		Speaker:     speaker,
		Injector:    twilio,
		Replier:     &realtime.Replier{Profile: profile, Gen: gen, Logger: logger},
		Greeting:    fmt.Sprintf("Hello! Thank you for calling %s. How may I help you today?", profile.CafeName),
		Logger:      logger,
	}
}
