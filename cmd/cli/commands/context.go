package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/internal/config"
	"github.com/jakechorley/camp-signup/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database *postgres.DB
	Logger   *zap.Logger
	Ctx      context.Context
}

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// occupancyColor colors a slot by how full it is: red when full, yellow from half, green otherwise
func occupancyColor(taken, capacity int) string {
	switch {
	case taken >= capacity:
		return colorRed
	case taken*2 >= capacity:
		return colorYellow
	}
	return colorGreen
}
