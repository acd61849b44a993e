package command

import (
	"github.com/sandevgo/warden/internal/core"
)

func NewCommands(
	access core.AccessConfig,
	ledger core.ActivityLedger,
	admin core.Administration,
	renderer ChartRenderer,
) []core.Command {
	return []core.Command{
		NewStartCommand(),
		NewMyIDCommand(),
		NewPromoteCommand(admin),
		NewDemoteCommand(admin),
		NewNameCommand(admin),
		NewChartCommand(ledger, renderer),
		NewSnapshotCommand(ledger, access),
		NewWeeklyCommand(ledger, access),
	}
}
