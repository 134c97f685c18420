// cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwdecoder/internal/appstate"
	"github.com/ColonelBlimp/cwdecoder/internal/audio"
	"github.com/ColonelBlimp/cwdecoder/internal/bridge"
	"github.com/ColonelBlimp/cwdecoder/internal/config"
	"github.com/ColonelBlimp/cwdecoder/internal/control"
	"github.com/ColonelBlimp/cwdecoder/internal/logging"
	"github.com/ColonelBlimp/cwdecoder/internal/release"
)

var rootCmd = &cobra.Command{
	Use:   "rakund",
	Short: "Polyphonic sample-based instrument sampler engine",
	Long:  `rakund loads velocity-layered sample instruments and plays them over a JSON-RPC-over-stdio bridge.`,
	RunE:  runSampler,
}

// runSampler is the main entry point that wires all components
// together: config, logging, persisted app state, the release
// registry, the audio engine, the control API, and the stdio event
// bridge (spec.md §5, §9).
func runSampler(_ *cobra.Command, _ []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(settings.Debug)
	logger.Debug("settings loaded", "instruments_dir", settings.InstrumentsDir, "device_index", settings.DeviceIndex)

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}
	state := appstate.New(configDir)

	releases := release.New()
	engine := audio.New(releases)
	if err := engine.Open(); err != nil {
		return fmt.Errorf("open audio engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("close audio engine", "err", err)
		}
	}()

	ctl := control.New(engine, releases, state, settings.InstrumentsDir, logging.Component(logger, "control"))
	br := bridge.New(ctl, os.Stdout, logging.Component(logger, "bridge"))

	go preloadLastInstrument(ctl, state, br, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() { serveErr <- br.Serve(os.Stdin) }()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig)
		return nil
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve bridge: %w", err)
		}
		return nil
	}
}

// preloadLastInstrument restores the previously loaded instrument on
// startup without blocking the bridge from serving requests (spec.md
// §4.7, §9). A missing or renamed folder is logged, never fatal.
func preloadLastInstrument(ctl *control.Control, state *appstate.Store, br *bridge.Bridge, logger *log.Logger) {
	st, err := state.Load()
	if err != nil {
		logger.Warn("load persisted app state", "err", err)
		return
	}
	if st.LastInstrument == "" {
		return
	}
	if err := ctl.LoadInstrument(st.LastInstrument, br.EmitProgress); err != nil {
		logger.Warn("preload last instrument", "folder", st.LastInstrument, "err", err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "execution error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().IntP("device", "d", -1, "output audio device index (-1 for default); validated and logged, playback always uses the default device")
	rootCmd.PersistentFlags().StringP("instruments-dir", "i", "", "instruments root directory (overrides config default)")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug-level structured logging")

	cobra.CheckErr(viper.BindPFlag("device_index", rootCmd.PersistentFlags().Lookup("device")))
	cobra.CheckErr(viper.BindPFlag("instruments_dir", rootCmd.PersistentFlags().Lookup("instruments-dir")))
	cobra.CheckErr(viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")))
}

func initConfig() {
	if err := config.Init(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}
