// Package commands implements the satwatch subcommands.
package commands

import (
	"fmt"

	"github.com/RMahshie/satscan/internal/artifacts"
	"github.com/RMahshie/satscan/internal/config"
	"github.com/RMahshie/satscan/internal/watch"
)

// Options are shared by every subcommand
type Options struct {
	APIURL string
	Watch  config.WatchConfig
}

func (o *Options) client() *watch.Client {
	return watch.NewClient(o.APIURL, nil)
}

func scanIDArg(arg string) (int64, error) {
	id, err := artifacts.ParseScanID(arg)
	if err != nil {
		return 0, fmt.Errorf("scan id %q: %w", arg, err)
	}
	return id, nil
}
