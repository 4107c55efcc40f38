package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-crime-forecast/internal/importer"
)

var (
	csvPath   string
	minYear   int
	workers   int
	batchSize int
)

func init() {
	defaults := importer.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load crimes from a Chicago crimes CSV export",
		Long:  "Load crimes from a Chicago crimes CSV export (file or stdin). Rows already in the store are left untouched.",
		Run:   runImport,
	}
	cmd.Flags().StringVar(&csvPath, "csv", "-", "CSV file to import, - for stdin")
	cmd.Flags().IntVar(&minYear, "min-year", defaults.MinYear, "Skip crimes before this year")
	cmd.Flags().IntVar(&workers, "workers", defaults.Workers, "Concurrent insert workers")
	cmd.Flags().IntVar(&batchSize, "batch-size", defaults.BatchSize, "Rows per insert transaction")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if csvPath != "-" {
		f, err := os.Open(csvPath)
		if err != nil {
			exitErr("open csv", err)
		}
		defer f.Close()
		r = f
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	im := importer.New(s, importer.Options{
		MinYear:   minYear,
		Workers:   workers,
		BatchSize: batchSize,
	}, metrics)

	res, err := im.Import(cmd.Context(), r)
	if err != nil {
		exitErr("import", err)
	}

	if err := printJSON(os.Stdout, res); err != nil {
		exitErr("encode", err)
	}
}
