package routes

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kindergarten_backend/internals/configs"
	billController "kindergarten_backend/internals/features/finance/bills/controller"
	billRepo "kindergarten_backend/internals/features/finance/bills/repository"
	billRoute "kindergarten_backend/internals/features/finance/bills/route"
	billService "kindergarten_backend/internals/features/finance/bills/service"
	dashController "kindergarten_backend/internals/features/home/dashboard/controller"
	dashRoute "kindergarten_backend/internals/features/home/dashboard/route"
	dashService "kindergarten_backend/internals/features/home/dashboard/service"
	msgController "kindergarten_backend/internals/features/notifications/messages/controller"
	msgRepo "kindergarten_backend/internals/features/notifications/messages/repository"
	msgRoute "kindergarten_backend/internals/features/notifications/messages/route"
	notifController "kindergarten_backend/internals/features/notifications/notifications/controller"
	notifRepo "kindergarten_backend/internals/features/notifications/notifications/repository"
	notifRoute "kindergarten_backend/internals/features/notifications/notifications/route"
	attController "kindergarten_backend/internals/features/school/attestations/controller"
	attRoute "kindergarten_backend/internals/features/school/attestations/route"
	attService "kindergarten_backend/internals/features/school/attestations/service"
	childController "kindergarten_backend/internals/features/school/children/controller"
	childRepo "kindergarten_backend/internals/features/school/children/repository"
	childRoute "kindergarten_backend/internals/features/school/children/route"
	classController "kindergarten_backend/internals/features/school/classes/controller"
	classRepo "kindergarten_backend/internals/features/school/classes/repository"
	classRoute "kindergarten_backend/internals/features/school/classes/route"
	classService "kindergarten_backend/internals/features/school/classes/service"
	reportController "kindergarten_backend/internals/features/school/reports/controller"
	reportRepo "kindergarten_backend/internals/features/school/reports/repository"
	reportRoute "kindergarten_backend/internals/features/school/reports/route"
	authController "kindergarten_backend/internals/features/users/auth/controller"
	authRoute "kindergarten_backend/internals/features/users/auth/route"
	"kindergarten_backend/internals/features/users/auth/scheduler"
	authService "kindergarten_backend/internals/features/users/auth/service"
	userController "kindergarten_backend/internals/features/users/user/controller"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	userRoute "kindergarten_backend/internals/features/users/user/route"
	helperauth "kindergarten_backend/internals/helpers/auth"
	"kindergarten_backend/internals/helpers/cache"
	"kindergarten_backend/internals/helpers/mailer"
	"kindergarten_backend/internals/helpers/push"
	"kindergarten_backend/internals/helpers/storage"
	"kindergarten_backend/internals/logger"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
	"kindergarten_backend/internals/realtime"
)

var startTime time.Time

// Deps are the process-wide clients main builds once. Redis and Gateway may be nil.
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Hub     *realtime.Hub
	Blob    storage.BlobService
	Push    push.Sender
	Mailer  mailer.Mailer
	Gateway billService.Gateway
	Cron    *cron.Cron
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()
	log := logger.GetLogger()

	// ===================== REPOSITORIES =====================
	users := userRepo.NewUserRepository(d.DB)
	classes := classRepo.NewClassRepository(d.DB)
	children := childRepo.NewChildRepository(d.DB)
	bills := billRepo.NewBillRepository(d.DB)
	reports := reportRepo.NewReportRepository(d.DB)
	notifs := notifRepo.NewNotificationRepository(d.DB)
	msgs := msgRepo.NewMessageRepository(d.DB)

	// dashboard ikut menerima event supaya cache stats di-invalidate
	dashboard := dashService.NewDashboardService(dashService.Sources{
		Children:      children,
		Classes:       classes,
		Users:         users,
		Bills:         bills,
		Notifications: notifs,
		Messages:      msgs,
	}, cache.New(d.Redis, configs.AppName))
	var events realtime.Publisher = realtime.Multi{d.Hub, dashboard}
	if d.Hub == nil {
		events = dashboard
	}

	// ===================== AUTH =====================
	blacklist := helperauth.NewBlacklist(d.DB, d.Redis, configs.JWTSecret)
	authSvc := &authService.AuthService{
		Users:       users,
		Tokens:      authService.NewTokenService(configs.JWTSecret, configs.JWTTTL),
		Resets:      authService.NewResetTokens(configs.JWTSecret, configs.PasswordResetTimeout),
		Blacklist:   blacklist,
		Mailer:      d.Mailer,
		Google:      authService.NewGoogleVerifier(configs.GoogleClientID),
		FrontendURL: configs.FrontendURL,
	}
	requireAuth := authMiddleware.AuthMiddleware(authSvc)
	optionalAuth := authMiddleware.OptionalAuth(authSvc)

	BaseRoutes(app)
	if d.Hub != nil {
		app.Get("/ws", realtime.Upgrade(wsVerifier(authSvc)), realtime.Handler(d.Hub))
	}

	log.Info("mounting auth & user routes")
	authRoute.AuthRoutes(app, authController.NewAuthController(authSvc, d.Blob), requireAuth, optionalAuth)
	userRoute.UserRoutes(app, userController.NewUserController(users, authSvc, events), requireAuth)

	// ===================== SCHOOL =====================
	log.Info("mounting school routes")
	classSvc := classService.NewClassService(classes, events)
	classRoute.ClassRoutes(app, classController.NewClassController(classSvc), requireAuth)
	childRoute.ChildRoutes(app, childController.NewChildController(children, classSvc, users, d.Blob, events), requireAuth)
	reportRoute.ReportRoutes(app, reportController.NewReportController(reports, children, events), requireAuth)
	attRoute.AttestationRoutes(app, attController.NewAttestationController(children, classes,
		attService.NewSigner(configs.GetEnv("ATTESTATION_SECRET", configs.JWTSecret), configs.PublicBaseURL)), requireAuth)

	// ===================== FINANCE =====================
	log.Info("mounting finance routes", zap.Bool("midtrans", d.Gateway != nil))
	bc := billController.NewBillController(bills, children, users, d.Gateway, events)
	billRoute.PaymentRoutes(app, bc)
	billRoute.BillRoutes(app, bc, requireAuth)

	// ===================== NOTIFICATIONS =====================
	notifRoute.NotificationRoutes(app, notifController.NewNotificationController(notifs, users, d.Push, events), requireAuth)
	msgRoute.MessageRoutes(app, msgController.NewMessageController(msgs, users, d.Push, events), requireAuth)
	dashRoute.DashboardRoutes(app, dashController.NewDashboardController(dashboard), requireAuth)

	// ===================== JOBS =====================
	if d.Cron != nil {
		if _, err := scheduler.RegisterBlacklistCleanup(d.Cron, blacklist); err != nil {
			log.Error("register blacklist cleanup", zap.Error(err))
		}
		if _, err := billService.RegisterOverdueSweep(d.Cron, bills); err != nil {
			log.Error("register overdue sweep", zap.Error(err))
		}
	}
}

func wsVerifier(a authMiddleware.Authenticator) realtime.TokenVerifier {
	return func(ctx context.Context, raw string) (string, string, error) {
		claims, err := a.Authenticate(ctx, raw)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}
}
