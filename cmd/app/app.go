package main

import (
	"os"

	"github.com/DRSN-tech/dropship-sync/internal/app"
	config "github.com/DRSN-tech/dropship-sync/internal/cfg"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
)

//	@title			Dropship Sync API
//	@version		1.0
//	@description	Конвейер синхронизации товаров поставщика с маркетплейсами
//	@BasePath		/api/v1
func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
