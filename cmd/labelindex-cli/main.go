package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/paveg/labelindex"
	"github.com/paveg/labelindex/internal/version"
)

func customUsage() {
	fmt.Fprintf(os.Stderr, "labelindex CLI (version %s)\n\n", version.Version)
	fmt.Fprintf(os.Stderr, "Usage: labelindex-cli [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  --demo\n\t\tRun a label index demo\n")
	fmt.Fprintf(os.Stderr, "  --config FILE\n\t\tLoad configuration from a JSON or YAML file\n")
	fmt.Fprintf(os.Stderr, "  -v, --version\n\t\tPrint version information and exit\n")
	fmt.Fprintf(os.Stderr, "  -h, --help\n\t\tShow this help message and exit\n")
}

func main() {
	versionFlag := flag.Bool("v", false, "Print version and exit")
	flag.BoolVar(versionFlag, "version", false, "Print version and exit") // alias
	demoFlag := flag.Bool("demo", false, "Run a label index demo")
	configFlag := flag.String("config", "", "Configuration file path")

	//nolint:reassign // Standard Go pattern for customizing flag usage message
	flag.Usage = customUsage

	flag.Parse()

	if *versionFlag {
		fmt.Print(version.Info().String())
		return
	}

	cfg := labelindex.LoadConfigFromEnv()
	if *configFlag != "" {
		loaded, err := labelindex.LoadConfigFromFile(*configFlag)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	labelindex.SetGlobalConfig(cfg)

	if *demoFlag {
		runDemo(cfg.VerboseLogging)
		return
	}

	flag.Usage()
	os.Exit(1)
}

func runDemo(verbose bool) {
	labels := []string{"a", "b", "b", "b", "b", "c", "d", "d", "a", "a"}
	idx, err := labelindex.New(labels, labelindex.WithName("letters"))
	if err != nil {
		log.Fatalf("building index: %v", err)
	}
	defer idx.Release()

	fmt.Printf("index: %s\n", idx)
	fmt.Printf("unique labels: %d\n", idx.NUnique(true))

	counts, err := idx.ValueCounts(labelindex.DefaultCountOptions())
	if err != nil {
		log.Fatalf("value counts: %v", err)
	}
	for i, label := range counts.Labels {
		fmt.Printf("  %v: %d\n", label, counts.Counts[i])
	}

	codes, uniques, err := idx.Factorize(false)
	if err != nil {
		log.Fatalf("factorize: %v", err)
	}
	defer uniques.Release()
	fmt.Printf("codes: %v\n", codes)

	if verbose {
		fmt.Printf("memory usage (shallow): %d bytes\n", idx.MemoryUsage(false))
		fmt.Printf("memory usage (deep):    %d bytes\n", idx.MemoryUsage(true))
	}
}
