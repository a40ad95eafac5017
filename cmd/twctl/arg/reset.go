package arg

import "github.com/SoarinFerret/TimerWarden/internal/ipc"

func init() {
	rootCmd.AddCommand(timerAction("reset", "Reset a timer to its full duration", "ResetCategory", (*ipc.Client).ResetTimer))
}
