package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sensor-anomaly-service/internal/adapters/secondary/filestore"
	"sensor-anomaly-service/internal/adapters/secondary/plot"
	"sensor-anomaly-service/internal/core/services"
)

type classifyOptions struct {
	outDir     string
	forceModel bool
	seed       int64
	logLevel   string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sensorctl",
		Short:         "Offline sensor anomaly analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newClassifyCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	opts := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify <file.csv>",
		Short: "Classify a sensor CSV and write the annotated table and plot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "static", "directory for the annotated CSV and plot")
	cmd.Flags().BoolVar(&opts.forceModel, "force-model", false, "always score with the statistical model")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "isolation forest seed")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level")
	return cmd
}

func runClassify(ctx context.Context, out io.Writer, path string, opts *classifyOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if level, err := log.ParseLevel(opts.logLevel); err == nil {
		log.SetLevel(level)
	}

	store, err := filestore.New(opts.outDir)
	if err != nil {
		return fmt.Errorf("open output dir: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	svc := services.NewAnalysisService(store, plot.NewRenderer(), nil, nil, services.AnalysisOptions{
		Seed:       opts.seed,
		ForceModel: opts.forceModel,
	})

	res, err := svc.Analyze(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, res.Summary)
	fmt.Fprintf(out, "rows: %d  anomalies: %d  model bypassed: %t\n",
		res.Run.RowCount, res.Run.AnomalyCount, res.Run.ModelBypassed)
	fmt.Fprintf(out, "annotated csv: %s\n", filepath.Join(store.Dir(), res.AnnotatedCSV))
	fmt.Fprintf(out, "plot: %s\n", filepath.Join(store.Dir(), res.Plot))
	return nil
}
