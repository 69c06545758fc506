package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	ridesegments "github.com/lucasjlepore/ride-segments"
	"github.com/lucasjlepore/ride-segments/activity"
	"github.com/lucasjlepore/ride-segments/pipeline"
)

func main() {
	params := pipeline.DefaultParams()
	jsonOut := flag.Bool("json", false, "Emit the full report as JSON")
	params.BindFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-fit-or-gpx-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	act, err := activity.DecodeFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}
	report, err := pipeline.Analyze(act, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(ridesegments.BuildRideNotes(report.Summary, report.ClimbSummaries(), report.Sprints))
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
