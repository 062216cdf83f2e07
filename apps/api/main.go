package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/amal/apps/api/echo"
	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/content"
	"github.com/trezcool/amal/core/guestsync"
	"github.com/trezcool/amal/core/intention"
	"github.com/trezcool/amal/core/mission"
	"github.com/trezcool/amal/core/progress"
	"github.com/trezcool/amal/core/quran"
	"github.com/trezcool/amal/core/ramadan"
	"github.com/trezcool/amal/core/user"
	appfs "github.com/trezcool/amal/fs"
	emailsvc "github.com/trezcool/amal/services/email"
	logsvc "github.com/trezcool/amal/services/logger"
	"github.com/trezcool/amal/storage/database"
	sqlxrepos "github.com/trezcool/amal/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// load content
	catalog, err := mission.LoadCatalog(appfs.FS)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading missions: %v", err), err)
	}
	titles, err := progress.LoadTitles(appfs.FS)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading titles: %v", err), err)
	}
	faq, err := content.LoadFAQ(appfs.FS)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading faq: %v", err), err)
	}

	// set up repositories & services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	missionRepo := sqlxrepos.NewMissionRepository(db)
	quranRepo := sqlxrepos.NewQuranRepository(db)
	intentionRepo := sqlxrepos.NewIntentionRepository(db)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewInt("missions").Set(int64(len(catalog.All())))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Validate:     validate,
		Translator:   translator,
		UserSvc:      user.NewService(usrRepo, mailSvc, conf),
		MissionSvc:   mission.NewService(missionRepo, catalog),
		ProgressSvc:  progress.NewService(missionRepo, titles),
		QuranSvc:     quran.NewService(quranRepo),
		Tafsir:       quran.NewTafsirClient(conf.Quran.TafsirBaseURL, conf.Quran.TafsirTimeout, logger),
		IntentionSvc: intention.NewService(intentionRepo),
		RamadanSvc:   ramadan.NewService(sqlxrepos.NewRamadanRepository(db)),
		SyncSvc:      guestsync.NewService(db, catalog, missionRepo, quranRepo, intentionRepo),
		FAQ:          faq,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
