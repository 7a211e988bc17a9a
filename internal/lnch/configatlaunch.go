//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/MHA535/turftopic/internal/mm"
	"github.com/MHA535/turftopic/internal/str"
	"github.com/MHA535/turftopic/internal/vv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	Config *str.CurrentConfiguration
	Msg    = mm.NewMessageMaker()

	ErrHelp    = errors.New("help requested")
	ErrVersion = errors.New("version requested")
)

const (
	ENVOLLAMAURL = "TT_OLLAMA_URL"
	ENVOLLAMAMDL = "TT_OLLAMA_MODEL"
	ENVPGPASS    = "TT_PG_PASS"
	ENVPGHOST    = "TT_PG_HOST"
	ENVSQLITE    = "TT_SQLITE_DB"
)

// ConfigAtLaunch - read the configuration values from the config file, .env and the command line
func ConfigAtLaunch() {
	const (
		FAIL1 = "Could not parse the information in '%s'. Skipping and attempting to use built-in defaults instead: %s"
		FAIL2 = "Could not read '%s': %s"
		FAIL3 = "Could not parse the command line: %s"
		MSG1  = "'%s' loaded"
		MSG2  = "no configuration file found; wrote the defaults to '%s'"
	)

	Config = BuildDefaultConfig()

	cf, wrote, err := LookForConfigFile()
	switch {
	case err != nil:
		Msg.WARN(err.Error())
	case wrote:
		Msg.NOTE(fmt.Sprintf(MSG2, cf))
	case cf != "":
		if e := ReadConfigFile(cf, Config); e != nil {
			Msg.CRIT(fmt.Sprintf(FAIL1, cf, e.Error()))
			Config = BuildDefaultConfig()
		} else {
			Msg.TMI(fmt.Sprintf(MSG1, cf))
		}
	}

	if e := ApplyEnv(Config, vv.ENVFILE); e != nil {
		Msg.WARN(fmt.Sprintf(FAIL2, vv.ENVFILE, e.Error()))
	}

	err = ParseArgs(Config, os.Args[1:])
	switch {
	case errors.Is(err, ErrHelp):
		PrintVersion(*Config)
		fmt.Println(Msg.Styled(Msg.Color(HelpText(*Config))))
		os.Exit(0)
	case errors.Is(err, ErrVersion):
		fmt.Println(vv.VERSION + VersSuppl)
		PrintBuildInfo()
		os.Exit(0)
	case err != nil:
		Msg.CRIT(fmt.Sprintf(FAIL3, err.Error()))
		os.Exit(1)
	}
}

// BuildDefaultConfig - return a CurrentConfiguration filled out with various default values
func BuildDefaultConfig() *str.CurrentConfiguration {
	var c str.CurrentConfiguration
	c.BatchSize = vv.DEFAULTBATCHSIZE
	c.BlackAndWhite = vv.BLACKANDWHITE
	c.Bins = vv.DEFAULTDYNBINS
	c.ChartHeight = vv.CHRTHEIGHT
	c.ChartWidth = vv.CHRTWIDTH
	c.EchoLog = vv.DEFAULTECHOLOG
	c.Encoder = vv.DEFAULTENCODER
	c.Epochs = vv.DEFAULTEPOCHS
	c.ExportFmt = vv.DEFAULTEXPORTFMT
	c.Gzip = true
	c.HostIP = vv.SERVEDFROMHOST
	c.HostPort = vv.SERVEDFROMPORT
	c.LogLevel = vv.DEFAULTLOGLVL
	c.MinDF = vv.DEFAULTMINDF
	c.OllamaModel = vv.DEFAULTOLLAMAMDL
	c.OllamaURL = vv.DEFAULTOLLAMAURL
	c.Seed = vv.DEFAULTSEED
	c.SQLiteDB = vv.DEFAULTSQLITEDB
	c.Store = vv.DEFAULTSTORE
	c.Strategy = vv.DEFAULTSTRATEGY
	c.StubDim = vv.DEFAULTSTUBDIM
	c.Topics = vv.DEFAULTTOPICS
	c.TopN = vv.DEFAULTTOPN
	c.TopTerms = vv.DEFAULTTOPTERMS
	c.UseStops = true

	c.PGLogin = str.PostgresLogin{
		Host:   vv.DEFAULTPSQLHOST,
		Port:   vv.DEFAULTPSQLPORT,
		User:   vv.DEFAULTPSQLUSER,
		Pass:   "",
		DBName: vv.DEFAULTPSQLDB,
	}
	return &c
}

// LookForConfigFile - the first config file in ./ or ~/.config/; if there is none, write the defaults to ~/.config/
func LookForConfigFile() (path string, wrote bool, err error) {
	candidates := []string{vv.CONFIGBASIC, vv.CONFIGYAML}

	h, e := os.UserHomeDir()
	if e == nil {
		home := fmt.Sprintf(vv.CONFIGALTAPTH, h)
		candidates = append(candidates,
			home+vv.CONFIGBASIC,
			home+vv.CONFIGYAML,
			home+strings.TrimSuffix(vv.CONFIGYAML, ".yaml")+".yml")
	}

	for _, c := range candidates {
		if _, e := os.Stat(c); e == nil {
			return c, false, nil
		}
	}

	if e != nil {
		return "", false, errors.New("cannot find UserHomeDir")
	}

	path = fmt.Sprintf(vv.CONFIGALTAPTH, h) + vv.CONFIGBASIC
	if err := WriteConfigFile(path, BuildDefaultConfig()); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// ReadConfigFile - JSON or YAML by extension; absent fields keep whatever c already holds
func ReadConfigFile(path string, c *str.CurrentConfiguration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	default:
		return json.Unmarshal(data, c)
	}
}

// WriteConfigFile - save c as indented JSON (or YAML, by extension) without the database password
func WriteConfigFile(path string, c *str.CurrentConfiguration) error {
	cc := *c
	cc.PGLogin.Pass = ""

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cc)
	default:
		data, err = json.MarshalIndent(cc, "", vv.JSONINDENT)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, vv.WRITEPERMS)
}

// ApplyEnv - values from the environment, or from envfile when it exists, override the configuration
func ApplyEnv(c *str.CurrentConfiguration, envfile string) error {
	if _, err := os.Stat(envfile); err == nil {
		// Load never overrides what is already set in the environment
		if err := godotenv.Load(envfile); err != nil {
			return err
		}
	}
	if v := os.Getenv(ENVOLLAMAURL); v != "" {
		c.OllamaURL = v
	}
	if v := os.Getenv(ENVOLLAMAMDL); v != "" {
		c.OllamaModel = v
	}
	if v := os.Getenv(ENVPGPASS); v != "" {
		c.PGLogin.Pass = v
	}
	if v := os.Getenv(ENVPGHOST); v != "" {
		c.PGLogin.Host = v
	}
	if v := os.Getenv(ENVSQLITE); v != "" {
		c.SQLiteDB = v
	}
	return nil
}

// ParseArgs - apply the command line to c
func ParseArgs(c *str.CurrentConfiguration, args []string) error {
	const (
		FAIL1 = "%s needs a value"
		FAIL2 = "%s: %w"
	)

	val := func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf(FAIL1, args[i])
		}
		return args[i+1], nil
	}

	num := func(i int) (int, error) {
		v, err := val(i)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf(FAIL2, args[i], err)
		}
		return n, nil
	}

	var err error
	for i, a := range args {
		switch a {
		case "-bw":
			c.BlackAndWhite = true
		case "-c":
			c.Corpus, err = val(i)
		case "-cx":
			c.Compass, err = val(i)
		case "-db":
			c.Store, err = val(i)
		case "-dr":
			c.DynRefit = true
		case "-dw":
			c.BinWidth, err = val(i)
		case "-dy":
			c.Bins, err = num(i)
		case "-el":
			c.EchoLog, err = num(i)
		case "-enc":
			c.Encoder, err = val(i)
		case "-ep":
			c.Epochs, err = num(i)
		case "-fmt":
			c.ExportFmt, err = val(i)
		case "-h":
			return ErrHelp
		case "-ll":
			c.LogLevel, err = num(i)
		case "-n":
			c.TopN, err = num(i)
		case "-ob":
			c.BatchSize, err = num(i)
		case "-pc", "-profcpu":
			c.ProfileCPU = true
		case "-pm", "-profmem":
			c.ProfileMEM = true
		case "-sa":
			c.HostIP, err = val(i)
		case "-sc":
			c.Scores = true
		case "-sd":
			var sd int
			sd, err = num(i)
			c.Seed = int64(sd)
		case "-sp":
			c.HostPort, err = num(i)
		case "-st":
			c.Strategy, err = val(i)
		case "-sv":
			c.Serve = true
		case "-t":
			c.Topics, err = num(i)
		case "-v":
			return ErrVersion
		default:
			// values and unknown flags alike
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// HelpText - the help template filled in with the current configuration
func HelpText(c str.CurrentConfiguration) string {
	const (
		FAIL = "HelpText() failed to execute help text template"
	)
	uh, _ := os.UserHomeDir()

	m := map[string]interface{}{
		"batch":      c.BatchSize,
		"bins":       c.Bins,
		"binwidth":   c.BinWidth,
		"compass":    c.Compass,
		"conffile":   vv.CONFIGBASIC,
		"echoll":     c.EchoLog,
		"enc":        c.Encoder,
		"encoders":   strings.Join(vv.KNOWNENCODERS, "C0, C3"),
		"epochs":     c.Epochs,
		"fmt":        c.ExportFmt,
		"formats":    strings.Join(vv.KNOWNFORMATS, "C0, C3"),
		"home":       fmt.Sprintf(vv.CONFIGALTAPTH, uh),
		"host":       c.HostIP,
		"ll":         c.LogLevel,
		"port":       c.HostPort,
		"seed":       c.Seed,
		"store":      c.Store,
		"strategies": strings.Join(vv.KNOWNSTRATEGIES, "C0, C3"),
		"strategy":   c.Strategy,
		"topics":     c.Topics,
		"topn":       c.TopN,
		"url":        vv.PROJURL,
		"yamlfile":   vv.CONFIGYAML,
	}

	t := template.Must(template.New("").Parse(vv.HELPTEXTTEMPLATE))

	var b bytes.Buffer
	if err := t.Execute(&b, m); err != nil {
		Msg.CRIT(FAIL)
	}
	return b.String()
}
