//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vv

const (
	TERMINALTEXT = `Copyright (C) %s / %s

      This program comes with ABSOLUTELY NO WARRANTY; without even the
      implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.

      This is free software, and you are welcome to redistribute it and/or
      modify it under the terms of the GNU General Public License version 3.`

	PROJYEAR = "2026"
	PROJAUTH = "MHA535"
	PROJURL  = "https://github.com/MHA535/turftopic"

	HELPTEXTTEMPLATE = `S3command line optionsS0:
   C1-bwC0          disable color output in the console
   C1-cC0 C2{file}C0    corpus: one document per line, or ".jsonl" with "text" and optional "time" (RFC3339)
   C1-cxC0 C2{x,y}C0    write a concept compass for two axes (s3 only) [C6currentC0: C3{{.compass}}C0]
   C1-dbC0 C2{string}C0 snapshot store: C3sqliteC0 or C3pgC0 [C6currentC0: C3{{.store}}C0]
   C1-drC0          dynamic model: fit every time bin afresh instead of sharing one basis
   C1-dwC0 C2{dur}C0    dynamic model with fixed-width time bins, e.g. C3168hC0 [C6currentC0: C3{{.binwidth}}C0]
   C1-dyC0 C2{num}C0    dynamic model with this many time bins [C6currentC0: C3{{.bins}}C0]
   C1-elC0 C2{num}C0    set echo server log level (C10-3C0) [C6currentC0: C3{{.echoll}}C0]
   C1-encC0 C2{string}C0 encoder: C3{{.encoders}}C0 [C6currentC0: C3{{.enc}}C0]
   C1-epC0 C2{num}C0    online epochs [C6currentC0: C3{{.epochs}}C0]
   C1-fmtC0 C2{string}C0 topic table format: C3{{.formats}}C0 [C6currentC0: C3{{.fmt}}C0]
   C1-hC0           print this help information
   C1-llC0 C2{num}C0    set log level (C10-5C0) [C6currentC0: C3{{.ll}}C0]
   C1-nC0 C2{num}C0     keywords per document [C6currentC0: C3{{.topn}}C0]
   C1-obC0 C2{num}C0    online batch size; 0 fits in one pass [C6currentC0: C3{{.batch}}C0]
   C1-pcC0          enable CPU profiling run
   C1-pmC0          enable MEM profiling run
   C1-scC0          show term scores in the topic table
   C1-sdC0 C2{num}C0    seed for every random start [C6currentC0: C3{{.seed}}C0]
   C1-saC0 C2{string}C0 server IP address [C6currentC0: C3{{.host}}C0]
   C1-spC0 C2{num}C0    server port [C6currentC0: C3{{.port}}C0]
   C1-stC0 C2{string}C0 strategy: C3{{.strategies}}C0 [C6currentC0: C3{{.strategy}}C0]
   C1-svC0          serve the fitted model over http
   C1-tC0 C2{num}C0     number of topics [C6currentC0: C3{{.topics}}C0]
   C1-vC0           print version info and exit

     S1NB:S0 "C3{{.conffile}}C0" (or "C3{{.yamlfile}}C0") in "C3{{.home}}C0" configures everything for you.
         Values in a "C3.envC0" file override the configuration: C3TT_OLLAMA_URLC0, C3TT_OLLAMA_MODELC0, C3TT_PG_PASSC0

     S1Source:S0 C3{{.url}}C0
`
)
