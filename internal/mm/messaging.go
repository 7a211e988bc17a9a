//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package mm

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"
)

//
// TERMINAL OUTPUT/MESSAGES
//

const (
	MSGMAND              = -1
	MSGCRIT              = 0
	MSGWARN              = 1
	MSGNOTE              = 2
	MSGFYI               = 3
	MSGPEEK              = 4
	MSGTMI               = 5
	TIMETRACKERMSGTHRESH = MSGFYI
	RESET                = "\033[0m"
	BLUE1                = "\033[38;5;38m"  // DeepSkyBlue2
	BLUE2                = "\033[38;5;68m"  // SteelBlue3
	CYAN2                = "\033[38;5;117m" // SkyBlue1
	GREEN                = "\033[38;5;70m"  // Chartreuse3
	RED1                 = "\033[38;5;160m" // Red3
	YELLOW1              = "\033[38;5;178m" // Gold3
	YELLOW2              = "\033[38;5;143m" // DarkKhaki
	GREY3                = "\033[38;5;242m" // Grey42
	WHITE                = "\033[38;5;255m" // Grey93
	BLINK                = "\033[30;0;5m"
	PANIC                = "[%s%s v.%s%s] %sUNRECOVERABLE ERROR%s\n"
	PANIC2               = "[%s%s v.%s%s] (%s%s%s) %sUNRECOVERABLE ERROR%s\n"
)

// MessageMaker - leveled terminal output; anything above LLvl is discarded
type MessageMaker struct {
	Lnc  time.Time
	BW   bool
	Clr  string // caller
	LLvl int
	LNm  string
	SNm  string
	Ver  string
	Win  bool
	Out  io.Writer
}

// NewMessageMaker - a MessageMaker that only reports critical problems
func NewMessageMaker() *MessageMaker {
	return &MessageMaker{
		Lnc:  time.Now(),
		LLvl: MSGCRIT,
		LNm:  "turftopic",
		SNm:  "TT",
		Win:  runtime.GOOS == "windows",
	}
}

// Caller - a copy of m that labels errors with the name of the calling function or route
func (m *MessageMaker) Caller(c string) *MessageMaker {
	n := *m
	n.Clr = c
	return &n
}

func (m *MessageMaker) out() io.Writer {
	if m.Out == nil {
		return os.Stdout
	}
	return m.Out
}

// Emit - send a message to the terminal, perhaps adding color and style to it
func (m *MessageMaker) Emit(message string, threshold int) {
	// sample output: "[TT] keynmf: batch 3 absorbed 50 documents (vocabulary: 1722)"

	if m.LLvl < threshold {
		return
	}

	if !m.Win && !m.BW {
		var color string

		switch threshold {
		case MSGMAND:
			color = GREEN
		case MSGCRIT:
			color = RED1
		case MSGWARN:
			color = YELLOW2
		case MSGNOTE:
			color = YELLOW1
		case MSGFYI:
			color = CYAN2
		case MSGPEEK:
			color = BLUE2
		case MSGTMI:
			color = GREY3
		default:
			color = WHITE
		}
		_, _ = fmt.Fprintf(m.out(), "[%s%s%s] %s%s%s\n", YELLOW1, m.SNm, RESET, color, message, RESET)
	} else {
		// terminal color codes not w's friend
		_, _ = fmt.Fprintf(m.out(), "[%s] %s\n", m.SNm, message)
	}
}

func (m *MessageMaker) MAND(s string) { m.Emit(s, MSGMAND) }
func (m *MessageMaker) CRIT(s string) { m.Emit(s, MSGCRIT) }
func (m *MessageMaker) WARN(s string) { m.Emit(s, MSGWARN) }
func (m *MessageMaker) NOTE(s string) { m.Emit(s, MSGNOTE) }
func (m *MessageMaker) FYI(s string)  { m.Emit(s, MSGFYI) }
func (m *MessageMaker) PEEK(s string) { m.Emit(s, MSGPEEK) }
func (m *MessageMaker) TMI(s string)  { m.Emit(s, MSGTMI) }

// Color - color text with ANSI codes by swapping out pseudo-tags
func (m *MessageMaker) Color(tagged string) string {
	// "[git: C4%sC0]" ==> green text for the %s
	swap := strings.NewReplacer("C1", "", "C2", "", "C3", "", "C4", "", "C5", "", "C6", "", "C7", "", "C0", "")

	if !m.Win && !m.BW {
		swap = strings.NewReplacer("C1", YELLOW1, "C2", CYAN2, "C3", BLUE1, "C4", GREEN, "C5", RED1,
			"C6", GREY3, "C7", BLINK, "C0", RESET)
	}
	return swap.Replace(tagged)
}

// Styled - style text with ANSI codes by swapping out pseudo-tags
func (m *MessageMaker) Styled(tagged string) string {
	const (
		BOLD    = "\033[1m"
		ITAL    = "\033[3m"
		UNDER   = "\033[4m"
		REVERSE = "\033[7m"
		STRIKE  = "\033[9m"
	)
	swap := strings.NewReplacer("S1", "", "S2", "", "S3", "", "S4", "", "S5", "", "S0", "")

	if !m.Win && !m.BW {
		swap = strings.NewReplacer("S1", BOLD, "S2", ITAL, "S3", UNDER, "S4", STRIKE, "S5", REVERSE,
			"S0", RESET)
	}
	return swap.Replace(tagged)
}

func (m *MessageMaker) ColStyle(tagged string) string {
	return m.Styled(m.Color(tagged))
}

// EC - report error and the caller; then exit
func (m *MessageMaker) EC(err error) {
	if err == nil {
		return
	}
	if m.Clr != "" {
		_, _ = fmt.Fprintf(m.out(), PANIC2, YELLOW2, m.LNm, m.Ver, RESET, CYAN2, m.Clr, RESET, RED1, RESET)
	} else {
		_, _ = fmt.Fprintf(m.out(), PANIC, YELLOW2, m.LNm, m.Ver, RESET, RED1, RESET)
	}
	_, _ = fmt.Fprintln(m.out(), err)
	m.ExitOrHang(1)
}

// ExitOrHang - Windows should hang to keep the error visible before the window closes and hides it
func (m *MessageMaker) ExitOrHang(e int) {
	const (
		HANG = `Execution suspended. %s is now frozen. Note any errors above. Execution will halt after %d seconds.`
		SUSP = 60
	)
	if m.Win {
		m.Emit(fmt.Sprintf(HANG, m.LNm, SUSP), MSGMAND)
		time.Sleep(SUSP * time.Second)
	}
	os.Exit(e)
}

// Timer - report how much time elapsed between A and B
func (m *MessageMaker) Timer(letter string, o string, start time.Time, previous time.Time) {
	// sample output: "[B2: 3.764s][Δ: 0.824s] keynmf: fit 2000 documents"
	d := fmt.Sprintf("[Δ: %.3fs] ", time.Since(previous).Seconds())
	o = fmt.Sprintf("[%s: %.3fs]", letter, time.Since(start).Seconds()) + d + o
	m.Emit(o, TIMETRACKERMSGTHRESH)
}
