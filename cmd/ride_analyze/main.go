package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/ride-segments/pipeline"
)

func main() {
	params := pipeline.DefaultParams()
	var (
		filePath  = flag.String("file", "", "Path to input .fit or .gpx file")
		outDir    = flag.String("out", "", "Output directory")
		format    = flag.String("format", "parquet", "Sample table format: parquet|csv")
		overwrite = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
	)
	params.BindFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --file ride.fit --out outdir [--weight 68] [--min-grade 3] [--sprint-speed 40] [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	result, err := pipeline.Run(pipeline.Options{
		InputPath:  *filePath,
		OutDir:     *outDir,
		Params:     params,
		Format:     *format,
		Overwrite:  *overwrite,
		CopySource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ride_analyze failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ride_analyze complete\n")
	fmt.Printf("Output dir:      %s\n", result.OutputDir)
	fmt.Printf("report:          %s\n", result.ReportPath)
	fmt.Printf("climbs:          %s\n", result.ClimbsPath)
	fmt.Printf("sprints:         %s\n", result.SprintsPath)
	fmt.Printf("ride summary:    %s\n", result.SummaryPath)
	fmt.Printf("ride notes:      %s\n", result.NotesPath)
	fmt.Printf("map:             %s\n", result.MapPath)
	fmt.Printf("samples:         %s\n", result.SamplesPath)
	if result.SourceCopyPath != "" {
		fmt.Printf("source copy:     %s\n", result.SourceCopyPath)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning:         %s\n", w)
	}
}
