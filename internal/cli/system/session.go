package system

import (
	"github.com/julianstephens/solace/internal/cli"
	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/logger"
	"github.com/julianstephens/solace/internal/tui"
)

type SessionCmd struct {
	Fast bool `help:"Run sessions at accelerated pace, ignoring activity durations."`
}

func (c *SessionCmd) Run(ctx *cli.Context) error {
	pacing := constants.PacingReal
	if settings, err := ctx.Store.GetSettings(); err == nil {
		pacing = settings.SessionPacing
	} else {
		logger.Warn("Failed to read settings, using real pacing", "error", err)
	}
	if c.Fast {
		pacing = constants.PacingFast
	}

	ctx.AutomaticBackup()
	return ctx.RunTUI(tui.Deps{Pacing: pacing})
}
