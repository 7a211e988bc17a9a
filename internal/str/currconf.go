//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package str

// CurrentConfiguration - everything a run can be told; filled from defaults, then the config file, then .env, then the command line
type CurrentConfiguration struct {
	BatchSize     int           `json:"BatchSize" yaml:"batchsize"` // 0: fit in one pass
	BlackAndWhite bool          `json:"BlackAndWhite" yaml:"blackandwhite"`
	Bins          int           `json:"Bins" yaml:"bins"`         // 0: no dynamic model
	BinWidth      string        `json:"BinWidth" yaml:"binwidth"` // e.g. "168h"; fixed-width time bins instead of Bins
	ChartHeight   string        `json:"ChartHeight" yaml:"chartheight"`
	ChartWidth    string        `json:"ChartWidth" yaml:"chartwidth"`
	Compass       string        `json:"Compass" yaml:"compass"` // "x,y"; empty for none
	Corpus        string        `json:"Corpus" yaml:"corpus"`
	DynRefit      bool          `json:"DynRefit" yaml:"dynrefit"` // fit a fresh model per time bin
	EchoLog       int           `json:"EchoLog" yaml:"echolog"`   // 0: "none", 1: "terse", 2: "prolix", 3: "prolix+remoteip"
	Encoder       string        `json:"Encoder" yaml:"encoder"`
	Epochs        int           `json:"Epochs" yaml:"epochs"`
	ExportFmt     string        `json:"ExportFmt" yaml:"exportfmt"`
	Gzip          bool          `json:"Gzip" yaml:"gzip"`
	HostIP        string        `json:"HostIP" yaml:"hostip"`
	HostPort      int           `json:"HostPort" yaml:"hostport"`
	KeywordIDF    bool          `json:"KeywordIDF" yaml:"keywordidf"`
	LogLevel      int           `json:"LogLevel" yaml:"loglevel"`
	MaxTerms      int           `json:"MaxTerms" yaml:"maxterms"` // candidate terms kept per text; 0 keeps all
	MinDF         int           `json:"MinDF" yaml:"mindf"`
	OllamaModel   string        `json:"OllamaModel" yaml:"ollamamodel"`
	OllamaURL     string        `json:"OllamaURL" yaml:"ollamaurl"`
	PGLogin       PostgresLogin `json:"PGLogin" yaml:"pglogin"`
	ProfileCPU    bool          `json:"ProfileCPU" yaml:"profilecpu"`
	ProfileMEM    bool          `json:"ProfileMEM" yaml:"profilemem"`
	Scores        bool          `json:"Scores" yaml:"scores"`
	Seed          int64         `json:"Seed" yaml:"seed"`
	Serve         bool          `json:"Serve" yaml:"serve"`
	SQLiteDB      string        `json:"SQLiteDB" yaml:"sqlitedb"`
	Store         string        `json:"Store" yaml:"store"` // "", "sqlite" or "pg"
	StubDim       int           `json:"StubDim" yaml:"stubdim"`
	Strategy      string        `json:"Strategy" yaml:"strategy"`
	Topics        int           `json:"Topics" yaml:"topics"`
	TopN          int           `json:"TopN" yaml:"topn"`
	TopTerms      int           `json:"TopTerms" yaml:"topterms"`
	UseStops      bool          `json:"UseStops" yaml:"usestops"`
}
