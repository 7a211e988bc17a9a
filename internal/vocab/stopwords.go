//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/MHA535/turftopic/internal/gen"
	"github.com/MHA535/turftopic/internal/vv"
)

// English - a short list of English function words
var English = []string{"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are",
	"as", "at", "be", "because", "been", "before", "being", "below", "between", "both", "but", "by", "can", "could",
	"did", "do", "does", "doing", "down", "during", "each", "few", "for", "from", "further", "had", "has", "have",
	"having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how", "i", "if", "in", "into", "is",
	"it", "its", "itself", "just", "me", "more", "most", "my", "myself", "no", "nor", "not", "now", "of", "off", "on",
	"once", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own", "same", "she", "should", "so",
	"some", "such", "than", "that", "the", "their", "theirs", "them", "themselves", "then", "there", "these", "they",
	"this", "those", "through", "to", "too", "under", "until", "up", "very", "was", "we", "were", "what", "when",
	"where", "which", "while", "who", "whom", "why", "will", "with", "would", "you", "your", "yours", "yourself",
	"yourselves"}

// DefaultStops - the built-in stop list, sorted and without repeats
func DefaultStops() []string {
	s := gen.Unique(English)
	sort.Strings(s)
	return s
}

// ReadStops - a JSON array of stop words
func ReadStops(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stp []string
	if err = json.Unmarshal(content, &stp); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return stp, nil
}

// LoadStops - the user's stop list from the config directory; the defaults are written there the first time
func LoadStops() []string {
	const (
		ERR1 = "LoadStops() cannot find UserHomeDir"
		ERR2 = "LoadStops() failed to parse "
		MSG1 = "LoadStops() wrote stop word configuration file: "
		MSG2 = "LoadStops() read stop words from: "
	)

	stops := DefaultStops()

	h, e := os.UserHomeDir()
	if e != nil {
		Msg.MAND(ERR1)
		return stops
	}
	fn := fmt.Sprintf(vv.CONFIGALTAPTH, h) + vv.CONFIGSTOPS

	if _, yes := os.Stat(fn); yes != nil {
		content, err := json.MarshalIndent(stops, vv.JSONINDENT, vv.JSONINDENT)
		if err != nil {
			return stops
		}
		if err = os.WriteFile(fn, content, vv.WRITEPERMS); err != nil {
			Msg.WARN(err.Error())
			return stops
		}
		Msg.PEEK(MSG1 + fn)
		return stops
	}

	stp, err := ReadStops(fn)
	if err != nil {
		Msg.CRIT(ERR2 + fn)
		return stops
	}
	Msg.PEEK(MSG2 + fn)
	return stp
}
