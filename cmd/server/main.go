// Command server runs the kinematics HTTP service for a Franka Emika Panda
// arm.
package main

import (
	"context"
	"fmt"

	"github.com/edaniels/golog"
	"go.viam.com/utils"

	"github.com/sevendof/pandakin/achievements"
	"github.com/sevendof/pandakin/kinematics"
	"github.com/sevendof/pandakin/web"
)

var logger = golog.NewDevelopmentLogger("pandakin")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Port             utils.NetPortFlag `flag:"port,default=8000,usage=port to listen on"`
	AchievementsFile string            `flag:"achievements,usage=path for persisting achievement progress"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	model := kinematics.NewPandaModel()
	var manager *achievements.Manager
	if argsParsed.AchievementsFile != "" {
		manager = achievements.NewManager(argsParsed.AchievementsFile, logger)
	}

	server := web.NewServer(model, manager, logger)
	return server.Serve(ctx, fmt.Sprintf(":%d", argsParsed.Port))
}
