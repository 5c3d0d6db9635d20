package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kass/go-geo-bearing/pkg/bootstrap"
	"github.com/kass/go-geo-bearing/pkg/config"
	"github.com/kass/go-geo-bearing/pkg/geo"
	"github.com/kass/go-geo-bearing/pkg/logger"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/render"
	"github.com/kass/go-geo-bearing/pkg/server"
	"github.com/kass/go-geo-bearing/pkg/validate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	logLevel   string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "go-geo-bearing",
	Short: "Which way is Jerusalem from here?",
	Long: `Computes great-circle and rhumb-line bearings toward a fixed reference
point and draws them as GeoJSON, HTML maps or terminal summaries.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if cmd.Root().PersistentFlags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		log, err = logger.New(cfg.Log.Level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var bearingCmd = &cobra.Command{
	Use:   "bearing",
	Short: "Print the bearing from one point to another",
	RunE:  runBearing,
}

var destinationCmd = &cobra.Command{
	Use:   "destination",
	Short: "Print the point reached from an origin along a bearing",
	RunE:  runDestination,
}

var lineCmd = &cobra.Command{
	Use:   "line",
	Short: "Print the directional ray from an origin toward the reference",
	RunE:  runLine,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Build a map view for a point, an address or the current position",
	RunE:  runShow,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var (
	fromFlag     string
	toFlag       string
	modeFlag     string
	bearingFlag  float64
	distanceFlag float64
	lengthFlag   float64
	addressFlag  string
	currentFlag  bool
	formatFlag   string
	outputFlag   string
	addrFlag     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./geobearing.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	bearingCmd.Flags().StringVarP(&fromFlag, "from", "f", "", "Origin as lat,lng")
	bearingCmd.Flags().StringVarP(&toFlag, "to", "t", "", "Destination as lat,lng (default: reference point)")
	bearingCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "great-circle or rhumb (default: config)")
	_ = bearingCmd.MarkFlagRequired("from")

	destinationCmd.Flags().StringVarP(&fromFlag, "from", "f", "", "Origin as lat,lng")
	destinationCmd.Flags().Float64VarP(&bearingFlag, "bearing", "b", 0, "Initial bearing in degrees")
	destinationCmd.Flags().Float64VarP(&distanceFlag, "distance", "d", 0, "Distance in meters")
	_ = destinationCmd.MarkFlagRequired("from")

	lineCmd.Flags().StringVarP(&fromFlag, "from", "f", "", "Origin as lat,lng")
	lineCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "great-circle or rhumb (default: config)")
	lineCmd.Flags().Float64VarP(&lengthFlag, "length", "l", 0, "Ray length in meters (default: config)")
	_ = lineCmd.MarkFlagRequired("from")

	showCmd.Flags().StringVarP(&fromFlag, "from", "f", "", "Origin as lat,lng")
	showCmd.Flags().StringVarP(&addressFlag, "address", "a", "", "Origin as a free-text address")
	showCmd.Flags().BoolVar(&currentFlag, "current", false, "Use the current position as origin")
	showCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "great-circle or rhumb (default: config)")
	showCmd.Flags().StringVarP(&formatFlag, "format", "o", "text", "text, geojson, yaml or html")
	showCmd.Flags().StringVar(&outputFlag, "out", "", "Write to file instead of stdout")
	showCmd.MarkFlagsMutuallyExclusive("from", "address", "current")
	showCmd.MarkFlagsOneRequired("from", "address", "current")

	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default: from config)")

	rootCmd.AddCommand(bearingCmd, destinationCmd, lineCmd, showCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseOrigin(s string) (models.GeoPoint, error) {
	p, err := models.ParseGeoPoint(s)
	if err != nil {
		return models.GeoPoint{}, err
	}
	return p, validate.Point(p)
}

func resolveMode(s string) (models.BearingMode, error) {
	if s == "" {
		s = cfg.Display.Mode
	}
	return models.ParseBearingMode(s)
}

func runBearing(cmd *cobra.Command, args []string) error {
	from, err := parseOrigin(fromFlag)
	if err != nil {
		return err
	}
	to := cfg.Reference.Point()
	toName := cfg.Reference.Name
	if toFlag != "" {
		if to, err = parseOrigin(toFlag); err != nil {
			return err
		}
		toName = to.String()
	}
	mode, err := resolveMode(modeFlag)
	if err != nil {
		return err
	}

	b := geo.Bearing(mode, from, to)
	distance := geo.Distance(from, to)
	if mode == models.Rhumb {
		distance = geo.RhumbDistance(from, to)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%.4f° %s toward %s (%s, %s)\n",
		b, geo.CompassPoint(b), toName, mode, render.FormatDistance(distance))
	return nil
}

func runDestination(cmd *cobra.Command, args []string) error {
	from, err := parseOrigin(fromFlag)
	if err != nil {
		return err
	}
	if err := validate.Bearing(bearingFlag); err != nil {
		return err
	}
	if err := validate.Distance("distance", distanceFlag); err != nil {
		return err
	}

	dest := geo.DestinationPoint(from, bearingFlag, distanceFlag)
	fmt.Fprintf(cmd.OutOrStdout(), "%.6f,%.6f\n", dest.Lat, dest.Lng)
	return nil
}

func runLine(cmd *cobra.Command, args []string) error {
	from, err := parseOrigin(fromFlag)
	if err != nil {
		return err
	}
	mode, err := resolveMode(modeFlag)
	if err != nil {
		return err
	}
	length := cfg.Display.LineLength
	if cmd.Flags().Changed("length") {
		if err := validate.Distance("length", lengthFlag); err != nil {
			return err
		}
		length = lengthFlag
	}

	b := geo.Bearing(mode, from, cfg.Reference.Point())
	line := geo.BearingLine(from, b, length)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%.6f,%.6f\n", line[0].Lat, line[0].Lng)
	fmt.Fprintf(out, "%.6f,%.6f\n", line[1].Lat, line[1].Lng)
	return nil
}

var viewFormats = map[string]bool{"text": true, "geojson": true, "yaml": true, "html": true}

func runShow(cmd *cobra.Command, args []string) error {
	if !viewFormats[formatFlag] {
		return &validate.ValidationError{Field: "format", Value: formatFlag, Rule: "oneof=text geojson yaml html"}
	}
	mode, err := resolveMode(modeFlag)
	if err != nil {
		return err
	}

	p, closer, err := bootstrap.Planner(cfg, log)
	if err != nil {
		return err
	}
	defer closer()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Geocoder.Timeout+cfg.Locator.Timeout)
	defer cancel()

	var view *models.MapView
	switch {
	case addressFlag != "":
		view, err = p.FromAddress(ctx, addressFlag, mode)
	case currentFlag:
		view, err = p.FromCurrentPosition(ctx, mode)
	default:
		var origin models.GeoPoint
		if origin, err = models.ParseGeoPoint(fromFlag); err == nil {
			view, err = p.FromPoint(origin, "", mode)
		}
	}
	if err != nil {
		return err
	}

	if outputFlag == "" {
		color := formatFlag == "text" && render.ColorEnabled(os.Stdout.Fd())
		return writeView(cmd.OutOrStdout(), view, formatFlag, color)
	}
	return writeFile(outputFlag, func(w io.Writer) error {
		return writeView(w, view, formatFlag, false)
	})
}

func writeView(w io.Writer, view *models.MapView, format string, color bool) error {
	switch format {
	case "text":
		_, err := fmt.Fprintln(w, render.Text(view, color))
		return err
	case "geojson":
		return render.WriteJSON(w, view)
	case "yaml":
		return render.WriteYAML(w, view)
	case "html":
		return render.WriteHTML(w, view)
	}
	return fmt.Errorf("unknown format %q", format)
}

// writeFile creates path, runs write and reports the close error when the write succeeded
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func runServe(cmd *cobra.Command, args []string) error {
	p, closer, err := bootstrap.Planner(cfg, log)
	if err != nil {
		return err
	}
	defer closer()

	addr := addrFlag
	if addr == "" {
		addr = cfg.ServerAddr()
	}

	srv := server.New(p, cfg.Server, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("Received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
