package arg

import "github.com/SoarinFerret/TimerWarden/internal/ipc"

func init() {
	cmd := timerAction("pause", "Pause a running timer", "PauseCategory", (*ipc.Client).PauseTimer)
	cmd.Aliases = []string{"p"}
	rootCmd.AddCommand(cmd)
}
