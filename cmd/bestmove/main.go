package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lebiraja/chess-bot/board"
	"github.com/lebiraja/chess-bot/config"
	"github.com/lebiraja/chess-bot/search"
)

// bestmove searches a position given in FEN and prints the best move in
// UCI notation. With no position argument it searches the starting
// position.
//
//	bestmove [fen] [-max-depth 6] [-move-time 30s]
func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	fen := board.FENStartPos
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		fen = args[0]
		args = args[1:]
	}

	cfg := config.DefaultConfig()
	if err := cfg.Load(args); err != nil {
		log.Fatal().Err(err).Msg("bad flags")
	}

	pos, err := board.PositionFromFEN(fen)
	if err != nil {
		log.Fatal().Err(err).Str("fen", fen).Msg("bad position")
	}

	s := search.New(cfg)
	m, err := s.FindBestMove(context.Background(), pos)
	if err != nil {
		log.Fatal().Err(err).Msg("search failed")
	}

	fmt.Println(m.UCI())
}
