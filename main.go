package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"skipdb/pkg/catalog"
	"skipdb/pkg/config"
	"skipdb/pkg/execution"
	"skipdb/pkg/index"
	"skipdb/pkg/iterator"
	"skipdb/pkg/logging"
	"skipdb/pkg/optimizer"
	"skipdb/pkg/storage"
	"skipdb/pkg/tuple"
	"skipdb/pkg/types"
)

type options struct {
	configPath string
	rows       int
	devices    int
	noSkip     bool
}

func main() {
	opts := parseArguments()

	settings, err := loadSettings(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(settings.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	if err := run(settings, opts); err != nil {
		logging.GetLogger().Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
}

func parseArguments() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to a YAML settings file")
	flag.IntVar(&opts.rows, "rows", 100000, "Number of sample readings to load")
	flag.IntVar(&opts.devices, "devices", 25, "Number of distinct devices among the readings")
	flag.BoolVar(&opts.noSkip, "no-skipscan", false, "Disable the skip-scan rewrite")
	flag.Parse()
	return opts
}

func loadSettings(opts options) (*config.Settings, error) {
	settings := config.Default()
	if opts.configPath != "" {
		var err error
		settings, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}
	if opts.noSkip {
		settings.EnableSkipScan = false
	}
	return settings, nil
}

// run loads a readings table where each device appears many times, then
// answers "first reading per device" and reports the work done.
func run(settings *config.Settings, opts options) error {
	log := logging.GetLogger()

	cat, err := loadReadings(opts.rows, opts.devices)
	if err != nil {
		return err
	}
	log.Info("sample data loaded",
		zap.Int("rows", opts.rows),
		zap.Int("devices", opts.devices))

	req := optimizer.DistinctRequest{
		Table: "readings",
		Index: "readings_device_ts_idx",
	}
	node, err := optimizer.PlanDistinct(settings, cat, req)
	if err != nil {
		return err
	}
	fmt.Printf("plan: %s\n\n", node)

	ctx := execution.NewExecContext()
	op, err := execution.NewBuilder(cat).Build(ctx, node)
	if err != nil {
		return err
	}

	started := time.Now()
	if err := op.Open(); err != nil {
		return err
	}
	n := 0
	err = iterator.ForEach(op, func(t *tuple.Tuple) error {
		if n < 5 {
			fmt.Println(t)
		}
		n++
		return nil
	})
	if cerr := op.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if n > 5 {
		fmt.Printf("... %d more\n", n-5)
	}
	fmt.Printf("\n%d distinct devices in %s\n", n, time.Since(started))
	return nil
}

// loadReadings registers readings(device, ts, temp) with an ordered index
// on (device, ts) and fills it with a skewed workload: few devices, many
// readings each, plus some readings with no device attached.
func loadReadings(rows, devices int) (*catalog.SystemCatalog, error) {
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.IntType, types.FloatType},
		[]string{"device", "ts", "temp"})
	if err != nil {
		return nil, err
	}
	table := storage.NewMemTable("readings", td)
	idx := index.NewSortedIndex(index.IndexMeta{
		Name:        "readings_device_ts_idx",
		Table:       "readings",
		Columns:     []int{0, 1},
		ColumnTypes: []types.Type{types.IntType, types.IntType},
	})

	for i := 0; i < rows; i++ {
		var device types.Field
		if i%97 == 0 {
			device = types.NewNullField(types.IntType)
		} else {
			device = types.NewIntField(int64(i % devices))
		}
		ts := types.NewIntField(int64(i))

		t := tuple.NewTuple(td)
		if err := t.SetField(0, device); err != nil {
			return nil, err
		}
		if err := t.SetField(1, ts); err != nil {
			return nil, err
		}
		if err := t.SetField(2, types.NewFloat64Field(15.0+float64(i%200)/10)); err != nil {
			return nil, err
		}
		rid, err := table.Insert(t)
		if err != nil {
			return nil, err
		}
		if err := idx.Insert([]types.Field{device, ts}, rid); err != nil {
			return nil, err
		}
	}

	cat := catalog.NewSystemCatalog()
	if err := cat.RegisterTable(table); err != nil {
		return nil, err
	}
	if err := cat.RegisterIndex(idx); err != nil {
		return nil, err
	}
	return cat, nil
}
