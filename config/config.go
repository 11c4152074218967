package config

import (
	"time"

	"github.com/namsral/flag"
)

// Config holds the tunable engine parameters. Zero TTSizeMB means the
// transposition table sizes itself from available system memory.
type Config struct {
	MaxDepth        int
	MoveTime        time.Duration
	UseQuiescence   bool
	QuiescenceDepth int
	TTSizeMB        int
}

func DefaultConfig() Config {
	return Config{
		MaxDepth:        5,
		MoveTime:        10 * time.Second,
		UseQuiescence:   true,
		QuiescenceDepth: 8,
		TTSizeMB:        256,
	}
}

func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("chessbot", flag.ContinueOnError)
	fs.IntVar(&c.MaxDepth, "max-depth", 5, "maximum search depth in plies")
	fs.DurationVar(&c.MoveTime, "move-time", 10*time.Second, "maximum time to spend per move")
	fs.BoolVar(&c.UseQuiescence, "use-quiescence", true, "extend the search with captures at leaf nodes")
	fs.IntVar(&c.QuiescenceDepth, "quiescence-depth", 8, "maximum quiescence search depth")
	fs.IntVar(&c.TTSizeMB, "tt-size-mb", 256, "transposition table size in MB (0 sizes from system memory)")
	err := fs.Parse(args)
	return err
}
