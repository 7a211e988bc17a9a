//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vv

const (
	MYNAME    = "Turftopic Go"
	SHORTNAME = "TT"
	VERSION   = "0.4.2"

	CONFIGALTAPTH  = "%s/.config/" // %s = os.UserHomeDir()
	CONFIGBASIC    = "turftopic-conf.json"
	CONFIGYAML     = "turftopic-conf.yaml"
	CONFIGSTOPS    = "turftopic-stops.json"
	ENVFILE        = ".env"
	JSONINDENT     = "  "
	WRITEPERMS     = 0644
	BLACKANDWHITE  = false
	DEFAULTLOGLVL  = 1
	DEFAULTECHOLOG = 0

	// model

	DEFAULTSTRATEGY   = "keynmf"
	DEFAULTTOPICS     = 10
	DEFAULTTOPN       = 25
	DEFAULTMINDF      = 1
	DEFAULTSEED       = 42
	DEFAULTTOPTERMS   = 10
	DEFAULTTOPDOCS    = 5
	DEFAULTNAMETERMS  = 4
	DEFAULTBATCHSIZE  = 0 // 0: fit in one go
	DEFAULTEPOCHS     = 1
	DEFAULTDYNBINS    = 0  // 0: no dynamic model
	DEFAULTPOSBINS    = 10 // bins by position when there are no timestamps and no bin count
	DEFAULTEXPORTFMT  = "terminal"
	MAXDOCDISPLAYLEN  = 300
	NMFITERATIONS     = 100
	NMFLEARNINGRATE   = 0.1
	NMFTRANSFORMITER  = 200
	ICAMAXITER        = 200
	ICATOLERANCE      = 1e-4
	KMEANSMAXITER     = 100
	MAXAUTOCLUSTERS   = 30
	GMMMAXITER        = 100
	GMMTOLERANCE      = 1e-4
	GMMREG            = 1e-6
	DEFAULTREDUCTION  = "agglomerative"
	DEFAULTIMPORTANCE = "c-tf-idf"
	DEFAULTS3METHOD   = "ica"

	// encoders

	DEFAULTENCODER   = "stub"
	DEFAULTSTUBDIM   = 64
	DEFAULTOLLAMAURL = "http://localhost:11434"
	DEFAULTOLLAMAMDL = "nomic-embed-text"
	OLLAMATIMEOUT    = 120 // seconds

	// server

	SERVEDFROMHOST           = "127.0.0.1"
	SERVEDFROMPORT           = 8011
	MAXECHOREQPERSECONDPERIP = 30
	CHRTWIDTH                = "1200px"
	CHRTHEIGHT               = "900px"

	// storage

	DEFAULTSTORE    = ""
	DEFAULTSQLITEDB = "turftopic.db"
	DEFAULTPSQLHOST = "127.0.0.1"
	DEFAULTPSQLUSER = "turftopic"
	DEFAULTPSQLPORT = 5432
	DEFAULTPSQLDB   = "turftopic"
)

var (
	KNOWNSTRATEGIES = []string{"keynmf", "s3", "cluster", "gmm"}
	KNOWNENCODERS   = []string{"stub", "ollama", "w2v"}
	KNOWNFORMATS    = []string{"terminal", "csv", "markdown", "latex"}
)
