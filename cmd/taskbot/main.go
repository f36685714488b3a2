package main

import (
	"fmt"
	"log"

	corecmd "github.com/m3rciful/taskbot/core/cmd"
	"github.com/m3rciful/taskbot/internal/bot"
	appconfig "github.com/m3rciful/taskbot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config/config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return appconfig.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*appconfig.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return bot.New(appCfg)
		},
	})
	if err != nil {
		log.Fatalf("taskbot: %v", err)
	}
}
