package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/youta-t/flarc"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/common"
	subenqueue "github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/enqueue"
	subqueue "github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/queue"
	subrun "github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/run"
	subsync "github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/sync"
	subtoken "github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/token"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/try"
)

func main() {
	name := path.Base(os.Args[0])
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", name), log.LstdFlags)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	enqueue := try.To(subenqueue.New()).OrFatal(logger)
	queue := try.To(subqueue.New()).OrFatal(logger)
	sync := try.To(subsync.New()).OrFatal(logger)
	run := try.To(subrun.New()).OrFatal(logger)
	token := try.To(subtoken.New()).OrFatal(logger)

	aquasync := try.To(
		flarc.NewCommandGroup(
			"AquaFarm field agent: queues readings while offline and sends them to aquafarmd.",
			common.Flags(""),
			flarc.WithSubcommand("enqueue", enqueue),
			flarc.WithSubcommand("queue", queue),
			flarc.WithSubcommand("sync", sync),
			flarc.WithSubcommand("run", run),
			flarc.WithSubcommand("token", token),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, aquasync, flarc.WithHelp(true)))
}
