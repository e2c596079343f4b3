package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gremwell/jtagctl/chain"
	"github.com/gremwell/jtagctl/rowparser"
	"github.com/gremwell/jtagctl/tap"
)

var (
	runPinFlags pinFlags
	rowsPath    string
	catalogPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a row script against the TAP and print results",
	Long: `run loads a row-script file (§6 row text format: chain, length,
value, optional tag) and shifts it through the TAP one leg at a time,
printing each completed scan leg's captured result.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&rowsPath, "rows", "", "path to a row-script file")
	runCmd.MarkFlagRequired("rows")
	runCmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a JSON device catalog (logged, not required to run raw rows)")

	runCmd.Flags().IntVarP(&runPinFlags.tck, "tck", "c", 11, "TCK BCM pin")
	runCmd.Flags().IntVarP(&runPinFlags.tms, "tms", "m", 25, "TMS BCM pin")
	runCmd.Flags().IntVarP(&runPinFlags.tdi, "tdi", "i", 10, "TDI BCM pin")
	runCmd.Flags().IntVarP(&runPinFlags.tdo, "tdo", "o", 9, "TDO BCM pin")
	runCmd.Flags().StringVar(&runPinFlags.driver, "driver", "rpio", "pin driver backend (rpio, gpiod)")
	runCmd.Flags().UintVar(&runPinFlags.gpiochip, "gpiochip", 0, "gpiod chip number (gpiod driver only)")
}

func runRun(cmd *cobra.Command, args []string) error {
	legs, err := rowparser.LoadRows(rowsPath)
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "jtagctl: ", log.LstdFlags)

	if catalogPath != "" {
		c, err := chain.LoadCatalog(catalogPath)
		if err != nil {
			return err
		}
		logger.Printf("[info] loaded catalog %q: %d device(s)", catalogPath, c.Len())
	}

	drv, err := openDriver(runPinFlags)
	if err != nil {
		return err
	}
	defer drv.Close()

	w := tap.NewWalker(drv, logger)
	w.Enqueue(legs...)
	w.Run()

	for _, r := range w.Results {
		fmt.Printf("0x%x\n", r)
	}
	return nil
}
