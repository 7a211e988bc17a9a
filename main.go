//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/MHA535/turftopic/internal/dyn"
	"github.com/MHA535/turftopic/internal/lnch"
	"github.com/MHA535/turftopic/internal/mm"
	"github.com/MHA535/turftopic/internal/store"
	"github.com/MHA535/turftopic/internal/str"
	"github.com/MHA535/turftopic/internal/tm"
	"github.com/MHA535/turftopic/internal/viz"
	"github.com/MHA535/turftopic/internal/vocab"
	"github.com/MHA535/turftopic/internal/vv"
	"github.com/MHA535/turftopic/internal/web"
	"github.com/pkg/profile"
)

var Msg = mm.NewMessageMaker()

func main() {
	// go tool pprof --pdf ./turftopic /var/folders/.../cpu.pprof > profile.pdf

	start := time.Now()

	lnch.ConfigAtLaunch()
	cfg := *lnch.Config
	configureMessaging(cfg)

	if cfg.ProfileCPU {
		defer profile.Start().Stop()
	} else if cfg.ProfileMEM {
		defer profile.Start(profile.MemProfile).Stop()
	}

	lnch.PrintVersion(cfg)
	fmt.Println(Msg.Color(fmt.Sprintf(vv.TERMINALTEXT, vv.PROJYEAR, vv.PROJAUTH)))

	if err := run(context.Background(), cfg, start); err != nil {
		Msg.Caller("run()").EC(err)
	}
}

// configureMessaging - one configured maker for main; every package's maker gets the same level and colour settings
func configureMessaging(cfg str.CurrentConfiguration) {
	Msg = lnch.NewMessageMakerConfigured(cfg)
	for _, m := range []*mm.MessageMaker{lnch.Msg, tm.Msg, dyn.Msg, vocab.Msg, store.Msg, viz.Msg, web.Msg} {
		lnch.UpdateMessageMakerWithConfig(m, cfg)
	}
}
