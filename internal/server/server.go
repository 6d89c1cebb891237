package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"foodshare/internal/mail"
	"foodshare/internal/metrics"
	"foodshare/internal/realtime"
	"foodshare/internal/storage"
	"foodshare/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

const donationNoPattern = `:donationNo|^DON-\d+$`

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Accounts  AccountStore
	Donations DonationStore
	FoodItems FoodItemStore
	Stats     StatsStore
	DB        Pinger

	Storage storage.Storage
	Mailer  mail.Mailer
	Hub     *realtime.Hub
	Metrics *metrics.Metrics

	// MediaDir is served under /media/ when photos live on local disk.
	MediaDir string
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	accounts  AccountStore
	donations DonationStore
	foodItems FoodItemStore
	stats     StatsStore
	db        Pinger

	storage storage.Storage
	mailer  mail.Mailer
	hub     *realtime.Hub
	metrics *metrics.Metrics

	cookie      *securecookie.SecureCookie
	signingKey  []byte
	authLimiter *ipRateLimiter
	now         func() time.Time

	mediaDir string
	handler  http.Handler
	server   *http.Server
}

func New(config *types.Config, logger *logrus.Logger, deps Deps) (*Service, error) {
	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil || len(hashKey) < 32 {
		return nil, errors.New("COOKIE_HASH_KEY must be base64 encoding of at least 32 bytes")
	}

	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode COOKIE_BLOCK_KEY: %w", err)
	}
	switch len(blockKey) {
	case 16, 24, 32:
	default:
		return nil, errors.New("COOKIE_BLOCK_KEY must decode to 16, 24 or 32 bytes")
	}

	signingKey, err := base64.StdEncoding.DecodeString(config.SessionSigningKey)
	if err != nil || len(signingKey) < 32 {
		return nil, errors.New("SESSION_SIGNING_KEY must be base64 encoding of at least 32 bytes")
	}

	cookie := securecookie.New(hashKey, blockKey)
	cookie.MaxAge(config.SessionMaxAgeSec)

	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Hub == nil {
		deps.Hub = realtime.NewHub(logger)
	}
	if deps.Mailer == nil {
		deps.Mailer = mail.NewLogMailer(logger)
	}

	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,

		accounts:  deps.Accounts,
		donations: deps.Donations,
		foodItems: deps.FoodItems,
		stats:     deps.Stats,
		db:        deps.DB,

		storage: deps.Storage,
		mailer:  deps.Mailer,
		hub:     deps.Hub,
		metrics: deps.Metrics,

		cookie:      cookie,
		signingKey:  signingKey,
		authLimiter: newIPRateLimiter(config.AuthRateLimitPerMin, time.Minute),
		now:         time.Now,

		mediaDir: deps.MediaDir,
		handler:  mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.NotFound = http.HandlerFunc(s.handleNotFound)

	r.Use(s.RequestID)
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler(), http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RateLimitAuth)

		r.HandleFunc("/signup", s.handlePostSignup, http.MethodPost)
		r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
		r.HandleFunc("/verify-email/resend", s.handlePostResendVerification, http.MethodPost)
	})

	r.HandleFunc("/verify-email/:token", s.handleGetVerifyEmail, http.MethodGet)
	r.HandleFunc("/logout", s.handleLogout, http.MethodGet, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/donate", s.handleGetDonorDashboard, http.MethodGet)
		r.HandleFunc("/donations", s.handlePostDonation, http.MethodPost)
		r.HandleFunc("/donations/history", s.handleGetDonationHistory, http.MethodGet)
		r.HandleFunc("/donations/"+donationNoPattern, s.handleGetDonation, http.MethodGet)
		r.HandleFunc("/donations/"+donationNoPattern+"/qrcode", s.handleGetDonationQRCode, http.MethodGet)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)
		r.Use(s.RequireStaff)

		r.HandleFunc("/admin", s.handleGetAdminDashboard, http.MethodGet)
		r.HandleFunc("/admin/donations", s.handleGetAdminDonations, http.MethodGet)
		r.HandleFunc("/admin/donations/"+donationNoPattern+"/status", s.handlePostDonationStatus, http.MethodPost)
		r.HandleFunc("/admin/donations/"+donationNoPattern+"/delete", s.handlePostDeleteDonation, http.MethodPost)
		r.HandleFunc("/admin/donations/"+donationNoPattern, s.handlePostUpdateDonation, http.MethodPost)

		r.HandleFunc("/admin/food-items", s.handleGetFoodItems, http.MethodGet)
		r.HandleFunc("/admin/food-items/:itemID/status", s.handlePostFoodItemStatus, http.MethodPost)

		r.HandleFunc("/admin/donors", s.handleGetDonors, http.MethodGet)
		r.HandleFunc("/admin/donors", s.handlePostDonor, http.MethodPost)
		r.HandleFunc("/admin/donors/:donorID", s.handleGetDonor, http.MethodGet)
		r.HandleFunc("/admin/donors/:donorID", s.handlePostUpdateDonor, http.MethodPost)
		r.HandleFunc("/admin/donors/:donorID/delete", s.handlePostDeleteDonor, http.MethodPost)
		r.HandleFunc("/admin/donors/:donorID/donations", s.handleGetDonorDonations, http.MethodGet)
		r.HandleFunc("/admin/donors/:donorID/status", s.handlePostDonorStatus, http.MethodPost)

		r.HandleFunc("/admin/profile", s.handlePostProfile, http.MethodPost)
		r.Handle("/admin/events", s.hub, http.MethodGet)
	})

	if s.mediaDir != "" {
		r.Handle("/media/...", noSniff(http.StripPrefix("/media/", http.FileServer(http.Dir(s.mediaDir)))), http.MethodGet)
	}
}
