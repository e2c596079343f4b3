package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gremwell/jtagctl/xvc"
)

var (
	xvcPinFlags pinFlags
	xvcPort     int
	xvcDelay    uint
)

var xvcCmd = &cobra.Command{
	Use:   "xvc",
	Short: "Run the XVC (Xilinx Virtual Cable) server",
	Long: `xvc starts a TCP server speaking the Xilinx Virtual Cable v1.0
protocol, translating getinfo/settck/shift requests from Vivado or
OpenOCD into raw TMS/TDI pin toggling against the configured GPIO header.`,
	RunE: runXVC,
}

func init() {
	rootCmd.AddCommand(xvcCmd)

	xvcCmd.Flags().IntVarP(&xvcPort, "port", "p", 2542, "TCP port to listen on")
	xvcCmd.Flags().UintVarP(&xvcDelay, "delay", "d", 40, "busy-wait spin count between pin updates")
	xvcCmd.Flags().IntVarP(&xvcPinFlags.tck, "tck", "c", 11, "TCK BCM pin")
	xvcCmd.Flags().IntVarP(&xvcPinFlags.tms, "tms", "m", 25, "TMS BCM pin")
	xvcCmd.Flags().IntVarP(&xvcPinFlags.tdi, "tdi", "i", 10, "TDI BCM pin")
	xvcCmd.Flags().IntVarP(&xvcPinFlags.tdo, "tdo", "o", 9, "TDO BCM pin")
	xvcCmd.Flags().StringVar(&xvcPinFlags.driver, "driver", "rpio", "pin driver backend (rpio, gpiod)")
	xvcCmd.Flags().UintVar(&xvcPinFlags.gpiochip, "gpiochip", 0, "gpiod chip number (gpiod driver only)")
}

func runXVC(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "xvc: ", log.LstdFlags)

	drv, err := openDriver(xvcPinFlags)
	if err != nil {
		return err
	}
	defer drv.Close()

	s := xvc.NewServer(drv, xvc.Delay(xvcDelay), xvcPort, verbose, logger)
	return s.ListenAndServe()
}
