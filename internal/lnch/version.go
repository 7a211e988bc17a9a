//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"fmt"
	"runtime"

	"github.com/MHA535/turftopic/internal/str"
	"github.com/MHA535/turftopic/internal/vv"
)

//
// VERSION INFO BUILD TIME INJECTION
//

// these next variables should be injected at build time:
// 'go build -ldflags "-X github.com/MHA535/turftopic/internal/lnch.GitCommit=$GIT_COMMIT"', etc

var GitCommit string
var VersSuppl string
var BuildDate string

// VersionLine - e.g. "[TT] Turftopic Go (v0.4.2) [git: 64974732] [keynmf; t=10; ll=1]"
func VersionLine(cc str.CurrentConfiguration) string {
	const (
		SN = "[C1%sC0] "
		GC = " [C4git: C4%sC0]"
		LL = " [C6%s; t=%d; ll=%dC0]"
		ME = "C5%sC0 (C2v%sC0)"
	)
	sn := fmt.Sprintf(SN, vv.SHORTNAME)
	gc := ""
	if GitCommit != "" {
		gc = fmt.Sprintf(GC, GitCommit)
	}
	ll := fmt.Sprintf(LL, cc.Strategy, cc.Topics, cc.LogLevel)
	versioninfo := fmt.Sprintf(ME, vv.MYNAME, vv.VERSION+VersSuppl)
	return sn + versioninfo + gc + ll
}

func PrintVersion(cc str.CurrentConfiguration) {
	fmt.Println(Msg.ColStyle(VersionLine(cc)))
}

func PrintBuildInfo() {
	// example:
	// 	Built:	2023-11-14@19:02:51		Golang:	go1.21.4
	//	System:	darwin-arm64
	const (
		BD = "\tS1Built:S0\tC3%sC0\t"
		GV = "\tS1Golang:S0\tC3%sC0\n"
		SY = "\tS1System:S0\tC3%s-%sC0\t"
	)

	bi := ""
	if BuildDate != "" {
		bi = Msg.ColStyle(fmt.Sprintf(BD, BuildDate))
	}
	bi += Msg.ColStyle(fmt.Sprintf(GV, runtime.Version()))
	bi += Msg.ColStyle(fmt.Sprintf(SY, runtime.GOOS, runtime.GOARCH))
	fmt.Println(bi)
}
