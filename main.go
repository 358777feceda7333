package main

import (
	"context"
	"fmt"

	"sharefile/share-api/app"
	"sharefile/share-api/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	router, d, err := app.NewRouter(context.Background())
	if err != nil {
		panic(err)
	}

	if d.Scheduler != nil {
		defer d.Scheduler.Shutdown()
	}

	addr := fmt.Sprintf(":%d", viper.GetInt("host.port"))
	zap.L().Info("Server starting", zap.String("addr", addr))

	err = router.Run(addr)
	if err != nil {
		panic(err)
	}
}
