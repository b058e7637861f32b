package upgrader

import (
	"log/slog"
	"os"
	"testing"

	"github.com/twiss/go-p2p/pkg/lib/log"
)

func TestMain(m *testing.M) {
	log.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	os.Exit(m.Run())
}
