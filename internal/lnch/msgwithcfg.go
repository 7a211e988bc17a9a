//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"runtime"
	"time"

	"github.com/MHA535/turftopic/internal/mm"
	"github.com/MHA535/turftopic/internal/str"
	"github.com/MHA535/turftopic/internal/vv"
)

func NewMessageMakerConfigured(c str.CurrentConfiguration) *mm.MessageMaker {
	return &mm.MessageMaker{
		Lnc:  time.Now(),
		BW:   c.BlackAndWhite,
		Clr:  "",
		LLvl: c.LogLevel,
		LNm:  vv.MYNAME,
		SNm:  vv.SHORTNAME,
		Ver:  vv.VERSION,
		Win:  runtime.GOOS == "windows",
	}
}

// UpdateMessageMakerWithConfig - bring a package's maker into line with the configuration
func UpdateMessageMakerWithConfig(m *mm.MessageMaker, c str.CurrentConfiguration) {
	m.BW = c.BlackAndWhite
	m.LLvl = c.LogLevel
	m.LNm = vv.MYNAME
	m.SNm = vv.SHORTNAME
	m.Ver = vv.VERSION
}
