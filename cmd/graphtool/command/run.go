package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/shapeql/clog"
	"github.com/cayleygraph/shapeql/cmd/graphtool/scenario"
	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/graph/memstore"
	"github.com/cayleygraph/shapeql/graph/shape"
	"github.com/cayleygraph/shapeql/quad"
	_ "github.com/cayleygraph/shapeql/quad/nquads"
)

func getContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		select {
		case <-ch:
		case <-ctx.Done():
		}
		signal.Stop(ch)
		cancel()
	}()
	return ctx, cancel
}

func loadDataset(path string) (*memstore.QuadStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	qs := memstore.New()
	qw, err := qs.NewQuadWriter()
	if err != nil {
		return nil, err
	}
	defer qw.Close()

	format := quad.FormatByName("nquads")
	if format == nil || format.Reader == nil {
		return nil, fmt.Errorf("graphtool: no reader registered for format %q", "nquads")
	}
	r := format.Reader(f)
	defer r.Close()

	n, err := quad.Copy(qw, r)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	clog.Infof("loaded %d quads from %s", n, path)
	return qs, nil
}

func runScenario(ctx context.Context, qs graph.QuadStore, sc scenario.Scenario, enc *json.Encoder) error {
	it := shape.BuildIterator(ctx, qs, sc.Shape)
	scan := it.Iterate()
	defer scan.Close()

	emit := func() error {
		dst := make(map[string]graph.Ref)
		scan.TagResults(dst)
		out := make(map[string]quad.Value, len(dst)+1)
		out["id"] = qs.NameOf(scan.Result())
		for tag, ref := range dst {
			out[tag] = qs.NameOf(ref)
		}
		return enc.Encode(out)
	}

	for scan.Next(ctx) {
		if err := emit(); err != nil {
			return err
		}
		for scan.NextPath(ctx) {
			if err := emit(); err != nil {
				return err
			}
		}
	}
	return scan.Err()
}

// NewRunCmd returns the "run" command, which loads the configured dataset
// and runs one or more of the canned scenarios (s1..s6, or "all") against
// it, printing result bindings as newline-delimited JSON.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Load the dataset and run a demo scenario (s1..s6, or all).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := loadDataset(viper.GetString(keyDataset))
			if err != nil {
				return err
			}
			defer qs.Close()

			ctx, cancel := getContext()
			defer cancel()

			names := []string{args[0]}
			if args[0] == "all" {
				names = scenario.Names()
			}

			enc := json.NewEncoder(os.Stdout)
			for _, name := range names {
				sc, err := scenario.Build(name)
				if err != nil {
					return err
				}
				clog.Infof("running %s", name)
				if err := runScenario(ctx, qs, sc, enc); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			return nil
		},
	}
	return cmd
}
